package holders

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Amount is a token amount. It is serialized as a decimal string so that
// clients without arbitrary precision numbers do not lose digits.
type Amount struct {
	*big.Int
}

// NewAmount wraps v. A nil v is treated as zero.
func NewAmount(v *big.Int) Amount {
	if v == nil {
		return Amount{Int: new(big.Int)}
	}
	return Amount{Int: v}
}

// ZeroAmount returns a zero amount.
func ZeroAmount() Amount {
	return Amount{Int: new(big.Int)}
}

// Big returns the amount as a big.Int, zero when unset.
func (a Amount) Big() *big.Int {
	if a.Int == nil {
		return new(big.Int)
	}
	return a.Int
}

func (a Amount) String() string {
	return a.Big().String()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("amount must be a decimal string: %w", err)
	}

	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fmt.Errorf("invalid amount %q", s)
	}
	a.Int = v

	return nil
}
