package registry

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/justingibbs/crabgrass/internal/event"
)

// LoadCUE compiles a registry override from a CUE file. The file declares a
// single synchronizations struct:
//
//	synchronizations: {
//		"idea.created": ["enqueue_connection", "enqueue_nurture_if_summary_only"]
//		"idea.archived": ["remove_from_connection_queue"]
//	}
//
// Entries keep their source order. Malformed values and unknown event names
// are reported with CUE source positions, aggregated into one
// ConfigurationError.
func LoadCUE(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry file: %w", err)
	}
	return CompileCUE(path, data)
}

// CompileCUE parses CUE source into a Registry. filename is used for error
// positions only.
func CompileCUE(filename string, src []byte) (*Registry, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, cuePositionError(err)
	}

	syncs := v.LookupPath(cue.ParsePath("synchronizations"))
	if !syncs.Exists() {
		return nil, NewConfigurationError([]string{
			fmt.Sprintf("%s: missing required field \"synchronizations\"", filename),
		})
	}

	valid := make(map[event.Name]bool, len(event.AllNames()))
	for _, n := range event.AllNames() {
		valid[n] = true
	}

	var (
		entries  []Entry
		problems []string
	)
	iter, err := syncs.Fields()
	if err != nil {
		return nil, cuePositionError(err)
	}
	for iter.Next() {
		name := event.Name(iter.Selector().Unquoted())
		val := iter.Value()

		if !valid[name] {
			problems = append(problems, posf(val, "unknown event %q", name))
			continue
		}

		handlers, errs := cueHandlerList(name, val)
		if len(errs) > 0 {
			problems = append(problems, errs...)
			continue
		}
		entries = append(entries, Entry{Event: name, Handlers: handlers})
	}

	if len(problems) > 0 {
		return nil, NewConfigurationError(problems)
	}
	return New(entries)
}

// cueHandlerList decodes one event's handler list.
func cueHandlerList(name event.Name, val cue.Value) ([]HandlerID, []string) {
	listIter, err := val.List()
	if err != nil {
		return nil, []string{posf(val, "event %q: handlers must be a list of strings", name)}
	}

	var (
		handlers []HandlerID
		problems []string
	)
	for listIter.Next() {
		s, err := listIter.Value().String()
		if err != nil {
			problems = append(problems, posf(listIter.Value(), "event %q: handler must be a string", name))
			continue
		}
		handlers = append(handlers, HandlerID(s))
	}
	if len(handlers) == 0 && len(problems) == 0 {
		problems = append(problems, posf(val, "event %q has no handlers", name))
	}
	return handlers, problems
}

// posf formats a problem with the CUE source position prefixed.
func posf(v cue.Value, format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	pos := v.Pos()
	if pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", pos.Filename(), pos.Line(), pos.Column(), msg)
	}
	return msg
}

// cuePositionError converts a CUE error into a ConfigurationError carrying
// source positions.
func cuePositionError(err error) error {
	var problems []string
	for _, e := range cueerrors.Errors(err) {
		positions := cueerrors.Positions(e)
		if len(positions) > 0 {
			p := positions[0]
			problems = append(problems, fmt.Sprintf("%s:%d:%d: %s", p.Filename(), p.Line(), p.Column(), e.Error()))
		} else {
			problems = append(problems, e.Error())
		}
	}
	if len(problems) == 0 {
		problems = []string{err.Error()}
	}
	return NewConfigurationError(problems)
}
