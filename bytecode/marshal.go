package bytecode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/uuid"
	"github.com/lightplayer/lps/op"
	"github.com/lightplayer/lps/types"
)

// FormatVersion is written into every serialized program.
const FormatVersion = 1

// File extensions understood by WriteFile and ReadFile.
const (
	ExtCBOR = ".lpsc"
	ExtJSON = ".json"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("bytecode: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalJSON encodes the program as JSON with opcodes written by name.
func (p *Program) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateFromProgram(p))
}

// UnmarshalJSON decodes a program written by MarshalJSON.
func (p *Program) UnmarshalJSON(data []byte) error {
	var state programState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	return state.restore(p)
}

// MarshalCBOR encodes the program as canonical CBOR.
func (p *Program) MarshalCBOR() ([]byte, error) {
	return cborEncMode.Marshal(stateFromProgram(p))
}

// UnmarshalCBOR decodes a program written by MarshalCBOR.
func (p *Program) UnmarshalCBOR(data []byte) error {
	var state programState
	if err := cbor.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("bytecode: unmarshal program: %w", err)
	}
	return state.restore(p)
}

// WriteFile writes the program to path, as CBOR for ".lpsc" files and as
// indented JSON for ".json" files.
func WriteFile(path string, p *Program) error {
	var data []byte
	var err error
	switch filepath.Ext(path) {
	case ExtCBOR:
		data, err = p.MarshalCBOR()
	case ExtJSON:
		data, err = json.MarshalIndent(stateFromProgram(p), "", "  ")
	default:
		return fmt.Errorf("bytecode: unsupported file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile loads a program written by WriteFile and validates it.
func ReadFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := &Program{}
	switch filepath.Ext(path) {
	case ExtCBOR:
		err = p.UnmarshalCBOR(data)
	case ExtJSON:
		err = p.UnmarshalJSON(data)
	default:
		return nil, fmt.Errorf("bytecode: unsupported file extension %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("bytecode: read %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("bytecode: read %s: %w", path, err)
	}
	return p, nil
}

// Serialization types

type programState struct {
	Version   int              `json:"version"`
	ID        string           `json:"id"`
	Name      string           `json:"name,omitempty"`
	Source    string           `json:"source,omitempty"`
	Functions []functionDef    `json:"functions"`
	Code      []instructionDef `json:"code"`
	SourceMap []Span           `json:"source_map,omitempty"`
}

type functionDef struct {
	Name       string     `json:"name"`
	Offset     int        `json:"offset"`
	Length     int        `json:"length"`
	Params     []localDef `json:"params,omitempty"`
	ReturnType string     `json:"return_type"`
	Locals     []localDef `json:"locals,omitempty"`
}

type localDef struct {
	Name    string  `json:"name"`
	Type    string  `json:"type"`
	Initial []int32 `json:"initial,omitempty"`
}

type instructionDef struct {
	Op  string `json:"op"`
	Arg int32  `json:"arg,omitempty"`
}

func stateFromProgram(p *Program) *programState {
	state := &programState{
		Version:   FormatVersion,
		ID:        p.ID.String(),
		Name:      p.Name,
		Source:    p.Source,
		Functions: make([]functionDef, len(p.Functions)),
		Code:      make([]instructionDef, len(p.Code)),
		SourceMap: p.SourceMap,
	}
	for i, fn := range p.Functions {
		def := functionDef{
			Name:       fn.Name,
			Offset:     fn.Offset,
			Length:     fn.Length,
			ReturnType: fn.ReturnType.String(),
		}
		for _, param := range fn.Params {
			def.Params = append(def.Params, localDef{Name: param.Name, Type: param.Type.String()})
		}
		for _, l := range fn.Locals {
			def.Locals = append(def.Locals, localDef{Name: l.Name, Type: l.Type.String(), Initial: l.Initial})
		}
		state.Functions[i] = def
	}
	for i, ins := range p.Code {
		state.Code[i] = instructionDef{Op: ins.Op.String(), Arg: ins.Arg}
	}
	return state
}

func (s *programState) restore(p *Program) error {
	if s.Version != FormatVersion {
		return fmt.Errorf("unsupported program format version %d", s.Version)
	}
	id, err := uuid.FromString(s.ID)
	if err != nil {
		return fmt.Errorf("invalid program id: %w", err)
	}
	out := Program{
		ID:        id,
		Name:      s.Name,
		Source:    s.Source,
		Code:      make([]Instruction, len(s.Code)),
		Functions: make([]Function, len(s.Functions)),
		SourceMap: s.SourceMap,
	}
	for i, def := range s.Code {
		code, ok := op.Lookup(def.Op)
		if !ok {
			return fmt.Errorf("unknown opcode %q at %d", def.Op, i)
		}
		out.Code[i] = Instruction{Op: code, Arg: def.Arg}
	}
	for i, def := range s.Functions {
		ret, err := parseType(def.ReturnType)
		if err != nil {
			return fmt.Errorf("function %s: %w", def.Name, err)
		}
		fn := Function{Name: def.Name, Offset: def.Offset, Length: def.Length, ReturnType: ret}
		for _, pd := range def.Params {
			t, err := parseType(pd.Type)
			if err != nil {
				return fmt.Errorf("function %s: %w", def.Name, err)
			}
			fn.Params = append(fn.Params, ParamDef{Name: pd.Name, Type: t})
		}
		for _, ld := range def.Locals {
			t, err := parseType(ld.Type)
			if err != nil {
				return fmt.Errorf("function %s: %w", def.Name, err)
			}
			if ld.Initial != nil && len(ld.Initial) != t.Size() {
				return fmt.Errorf("function %s: local %s has %d initial words, want %d",
					def.Name, ld.Name, len(ld.Initial), t.Size())
			}
			fn.Locals = append(fn.Locals, LocalVarDef{Name: ld.Name, Type: t, Initial: ld.Initial})
		}
		out.Functions[i] = fn
	}
	*p = out
	return nil
}

func parseType(name string) (types.Type, error) {
	t, ok := types.FromName(name)
	if !ok {
		return types.None, fmt.Errorf("unknown type %q", name)
	}
	return t, nil
}
