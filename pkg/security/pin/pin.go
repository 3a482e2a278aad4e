package pin

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// errors
var (
	ErrEmptyPin      = errors.New("pin is empty")
	ErrInvalidLength = errors.New("pin must be exactly 6 digits")
	ErrNonNumeric    = errors.New("pin must contain digits only")
	ErrEmptyHash     = errors.New("pin hash is empty")
)

// Length is the exact pin length in digits
const Length = 6

// Credential holds a bcrypt hash of the owner's pin; the raw pin itself
// is never persisted
type Credential struct {
	Hash      []byte    `json:"hash"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EvaluatePin checks whether a given raw pin conforms to the fixed
// 6-digit format
func EvaluatePin(rawpin []byte) error {
	if len(rawpin) == 0 {
		return ErrEmptyPin
	}

	if len(rawpin) != Length {
		return ErrInvalidLength
	}

	for _, c := range rawpin {
		if c < '0' || c > '9' {
			return ErrNonNumeric
		}
	}

	return nil
}

// New creates a credential from a given raw pin
func New(rawpin []byte) (c Credential, err error) {
	if err = EvaluatePin(rawpin); err != nil {
		return c, err
	}

	h, err := bcrypt.GenerateFromPassword(rawpin, bcrypt.DefaultCost)
	if err != nil {
		return c, err
	}

	now := time.Now()

	c = Credential{
		Hash:      h,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return c, nil
}

// Validate checks credential integrity
func (c Credential) Validate() error {
	if len(c.Hash) == 0 {
		return ErrEmptyHash
	}

	return nil
}

// Compare tests whether a given raw pin matches this credential
func (c Credential) Compare(rawpin []byte) bool {
	return bcrypt.CompareHashAndPassword(c.Hash, rawpin) == nil
}
