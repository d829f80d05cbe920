package packet

import (
	"fmt"
)

// Command carries one remote admin command. The payload is the raw UTF-8
// command text, nothing else; correlation relies on the protocol's single
// in-flight command rule, not on request ids.
type Command struct {
	Text string
}

func NewCommand(text string) *Command {
	return &Command{Text: text}
}

func (p *Command) Type() ContentType {
	return TypeCommand
}
func (p *Command) String() string {
	return fmt.Sprintf("COMMAND(%q)", p.Text)
}
func (p *Command) Equal(other Packet) bool {
	if other == nil || other.Type() != TypeCommand {
		return false
	}
	return p.Text == other.(*Command).Text
}
func (p *Command) EncodeTo(w Encoder) error {
	w.WriteBytes([]byte(p.Text))
	return nil
}
func (p *Command) DecodeFrom(r Decoder) error {
	data, err := r.ReadAll()
	if err != nil {
		return err
	}
	p.Text = string(data)
	return nil
}

// Raw carries arbitrary text with no admin semantics attached.
type Raw struct {
	Text string
}

func NewRaw(text string) *Raw {
	return &Raw{Text: text}
}

func (p *Raw) Type() ContentType {
	return TypeRaw
}
func (p *Raw) String() string {
	return fmt.Sprintf("RAW(%q)", p.Text)
}
func (p *Raw) Equal(other Packet) bool {
	if other == nil || other.Type() != TypeRaw {
		return false
	}
	return p.Text == other.(*Raw).Text
}
func (p *Raw) EncodeTo(w Encoder) error {
	w.WriteBytes([]byte(p.Text))
	return nil
}
func (p *Raw) DecodeFrom(r Decoder) error {
	data, err := r.ReadAll()
	if err != nil {
		return err
	}
	p.Text = string(data)
	return nil
}
