package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/naga"
)

// ErrCompile is returned when a shader stage fails to compile.
var ErrCompile = errors.New("pipeline: shader compile failed")

// Compiler turns one shader stage into SPIR-V words.
type Compiler interface {
	Compile(stage ShaderStage) ([]uint32, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(ShaderStage) ([]uint32, error)

// Compile calls f(stage).
func (f CompilerFunc) Compile(stage ShaderStage) ([]uint32, error) { return f(stage) }

// NagaCompiler compiles WGSL stages with naga after resolving the stage's
// defines.
type NagaCompiler struct {
	// Debug emits SPIR-V debug names.
	Debug bool
}

// Compile implements Compiler.
func (c NagaCompiler) Compile(stage ShaderStage) ([]uint32, error) {
	src, err := Preprocess(stage.Source, stage.Defines)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, stage.Stage, err)
	}

	opts := naga.DefaultOptions()
	opts.Debug = c.Debug
	spirvBytes, err := naga.CompileWithOptions(src, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, stage.Stage, err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: %s: output is not word aligned", ErrCompile, stage.Stage)
	}
	return spirvWords(spirvBytes), nil
}

// spirvWords converts little-endian SPIR-V bytes to words.
func spirvWords(b []byte) []uint32 {
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = uint32(b[i*4]) |
			uint32(b[i*4+1])<<8 |
			uint32(b[i*4+2])<<16 |
			uint32(b[i*4+3])<<24
	}
	return words
}

// Preprocess resolves #define, #ifdef, #ifndef, #else and #endif lines.
// Names in defines start out defined; a #define line in the source adds
// one. Directive lines are dropped from the output.
func Preprocess(src string, defines []string) (string, error) {
	defined := make(map[string]bool, len(defines))
	for _, d := range defines {
		defined[d] = true
	}

	type frame struct {
		parentActive bool
		cond         bool
		seenElse     bool
	}
	var stack []frame
	active := true

	var out strings.Builder
	sc := bufio.NewScanner(strings.NewReader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		directive, arg, ok := parseDirective(text)
		if !ok {
			if active {
				out.WriteString(text)
				out.WriteByte('\n')
			}
			continue
		}

		switch directive {
		case "define":
			if active && arg != "" {
				defined[arg] = true
			}
		case "ifdef", "ifndef":
			if arg == "" {
				return "", fmt.Errorf("line %d: #%s needs a name", line, directive)
			}
			cond := defined[arg]
			if directive == "ifndef" {
				cond = !cond
			}
			stack = append(stack, frame{parentActive: active, cond: cond})
			active = active && cond
		case "else":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #else without #ifdef", line)
			}
			top := &stack[len(stack)-1]
			if top.seenElse {
				return "", fmt.Errorf("line %d: duplicate #else", line)
			}
			top.seenElse = true
			active = top.parentActive && !top.cond
		case "endif":
			if len(stack) == 0 {
				return "", fmt.Errorf("line %d: #endif without #ifdef", line)
			}
			active = stack[len(stack)-1].parentActive
			stack = stack[:len(stack)-1]
		default:
			return "", fmt.Errorf("line %d: unknown directive #%s", line, directive)
		}
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	if len(stack) != 0 {
		return "", fmt.Errorf("%d unterminated #ifdef", len(stack))
	}
	return out.String(), nil
}

func parseDirective(line string) (directive, arg string, ok bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "#") {
		return "", "", false
	}
	fields := strings.Fields(s[1:])
	if len(fields) == 0 {
		return "", "", false
	}
	if len(fields) > 1 {
		arg = fields[1]
	}
	return fields[0], arg, true
}

// moduleKey identifies a compiled shader module: stage, sorted defines
// and source.
func moduleKey(s ShaderStage) string {
	defs := append([]string(nil), s.Defines...)
	sort.Strings(defs)
	return fmt.Sprintf("%d|%s|%s|%s", s.Stage, s.EntryPoint, strings.Join(defs, ","), s.Source)
}
