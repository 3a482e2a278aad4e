package util

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/tidwall/pretty"
)

// PrettyPrint prints an indented JSON representation of a given value;
// when marshal is false, val must already be a raw JSON []byte
func PrettyPrint(marshal bool, val interface{}) {
	var buf []byte
	var err error

	if marshal {
		buf, err = json.Marshal(val)
		if err != nil {
			panic(errors.Wrap(err, "PrettyPrint(): failed to marshal value"))
		}
	} else {
		buf, _ = val.([]byte)
	}

	fmt.Printf("%s\n", pretty.Pretty(buf))
}
