package packet

import (
	"fmt"
)

// Console is a pushed console line. Delivered to subscribers only, it never
// answers a command.
type Console struct {
	Line string
}

func NewConsole(line string) *Console {
	return &Console{Line: line}
}

func (p *Console) Type() ContentType {
	return TypeConsole
}
func (p *Console) String() string {
	return fmt.Sprintf("CONSOLE(%q)", p.Line)
}
func (p *Console) Equal(other Packet) bool {
	if other == nil || other.Type() != TypeConsole {
		return false
	}
	return p.Line == other.(*Console).Line
}
func (p *Console) EncodeTo(w Encoder) error {
	w.WriteBytes([]byte(p.Line))
	return nil
}
func (p *Console) DecodeFrom(r Decoder) error {
	data, err := r.ReadAll()
	if err != nil {
		return err
	}
	p.Line = string(data)
	return nil
}

// LogLine is a pushed server log line, sent only when the client subscribed
// to logs during the handshake.
type LogLine struct {
	Line string
}

func NewLogLine(line string) *LogLine {
	return &LogLine{Line: line}
}

func (p *LogLine) Type() ContentType {
	return TypeLog
}
func (p *LogLine) String() string {
	return fmt.Sprintf("LOG(%q)", p.Line)
}
func (p *LogLine) Equal(other Packet) bool {
	if other == nil || other.Type() != TypeLog {
		return false
	}
	return p.Line == other.(*LogLine).Line
}
func (p *LogLine) EncodeTo(w Encoder) error {
	w.WriteBytes([]byte(p.Line))
	return nil
}
func (p *LogLine) DecodeFrom(r Decoder) error {
	data, err := r.ReadAll()
	if err != nil {
		return err
	}
	p.Line = string(data)
	return nil
}

// AdminResponse is the plaintext answer to the in-flight admin command.
// Success selects between the successful and unsuccessful content types on
// the wire.
type AdminResponse struct {
	Text    string
	Success bool
}

func NewAdminResponse(text string, success bool) *AdminResponse {
	return &AdminResponse{Text: text, Success: success}
}

func (p *AdminResponse) Type() ContentType {
	if p.Success {
		return TypeAdminSuccess
	}
	return TypeAdminFailure
}
func (p *AdminResponse) String() string {
	return fmt.Sprintf("%s(%q)", p.Type(), p.Text)
}
func (p *AdminResponse) Equal(other Packet) bool {
	if other == nil || other.Type() != p.Type() {
		return false
	}
	return p.Text == other.(*AdminResponse).Text
}
func (p *AdminResponse) EncodeTo(w Encoder) error {
	w.WriteBytes([]byte(p.Text))
	return nil
}
func (p *AdminResponse) DecodeFrom(r Decoder) error {
	data, err := r.ReadAll()
	if err != nil {
		return err
	}
	p.Text = string(data)
	return nil
}

// CommandException reports that the in-flight command threw server side.
type CommandException struct {
	Text string
}

func NewCommandException(text string) *CommandException {
	return &CommandException{Text: text}
}

func (p *CommandException) Type() ContentType {
	return TypeException
}
func (p *CommandException) String() string {
	return fmt.Sprintf("EXCEPTION(%q)", p.Text)
}
func (p *CommandException) Equal(other Packet) bool {
	if other == nil || other.Type() != TypeException {
		return false
	}
	return p.Text == other.(*CommandException).Text
}
func (p *CommandException) EncodeTo(w Encoder) error {
	w.WriteBytes([]byte(p.Text))
	return nil
}
func (p *CommandException) DecodeFrom(r Decoder) error {
	data, err := r.ReadAll()
	if err != nil {
		return err
	}
	p.Text = string(data)
	return nil
}

// Unrecognized preserves a frame whose content type this client does not
// know. The server reserves values for future use; receiving one is not an
// error.
type Unrecognized struct {
	Kind    ContentType
	Payload []byte
}

func (p *Unrecognized) Type() ContentType {
	return p.Kind
}
func (p *Unrecognized) String() string {
	return fmt.Sprintf("%s(%d bytes)", p.Kind, len(p.Payload))
}
func (p *Unrecognized) Equal(other Packet) bool {
	o, ok := other.(*Unrecognized)
	if !ok {
		return false
	}
	return p.Kind == o.Kind && string(p.Payload) == string(o.Payload)
}
func (p *Unrecognized) EncodeTo(w Encoder) error {
	w.WriteBytes(p.Payload)
	return nil
}
func (p *Unrecognized) DecodeFrom(r Decoder) error {
	data, err := r.ReadAll()
	if err != nil {
		return err
	}
	p.Payload = data
	return nil
}
