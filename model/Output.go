package model

import (
	"fmt"

	"github.com/bsv-blockchain/go-bt/v2"
)

// Output pairs an amount in satoshis with its locking script.
type Output struct {
	Value  uint64
	Script *Script
}

func NewOutput(value uint64, script *Script) *Output {
	if script == nil {
		script = NewScriptFromRaw(nil)
	}

	return &Output{Value: value, Script: script}
}

// NewOutputFromBt wraps a go-bt transaction output. The locking script bytes are shared.
func NewOutputFromBt(o *bt.Output) *Output {
	return NewOutput(o.Satoshis, NewScriptFromBt(o.LockingScript))
}

// ToBt converts the output to a go-bt transaction output.
func (o *Output) ToBt() *bt.Output {
	return &bt.Output{
		Satoshis:      o.Value,
		LockingScript: o.Script.Bt(),
	}
}

func (o *Output) String() string {
	return fmt.Sprintf("%d - %s", o.Value, o.Script)
}

// Coin is an unspent output together with the block context it was created in.
// Only Value and Script are part of the compressed coin encoding; Height and Coinbase
// are carried by the store that persists it.
type Coin struct {
	Value    uint64
	Script   *Script
	Height   uint32
	Coinbase bool
}

func NewCoin(value uint64, script *Script, height uint32, coinbase bool) *Coin {
	if script == nil {
		script = NewScriptFromRaw(nil)
	}

	return &Coin{Value: value, Script: script, Height: height, Coinbase: coinbase}
}

// Output returns the value and script of the coin as an Output sharing the same script.
func (c *Coin) Output() *Output {
	return &Output{Value: c.Value, Script: c.Script}
}

func (c *Coin) String() string {
	if c.Coinbase {
		return fmt.Sprintf("%d - %s (height %d coinbase)", c.Value, c.Script, c.Height)
	}

	return fmt.Sprintf("%d - %s (height %d)", c.Value, c.Script, c.Height)
}
