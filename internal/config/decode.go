package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dshills/lineconf/internal/config/loader"
	"github.com/dshills/lineconf/internal/errs"
	"github.com/dshills/lineconf/internal/input/keymap"
	"github.com/dshills/lineconf/internal/optional"
	"github.com/dshills/lineconf/internal/options"
	"github.com/dshills/lineconf/internal/palette"
	"github.com/dshills/lineconf/internal/script"
)

// Section names in a settings file.
const (
	sectionOptions    = "options"
	sectionColors     = "colors"
	sectionKeyHandler = "keyhandler"
)

// KeyHandler is one [[keyhandler]] entry of a settings file.
type KeyHandler struct {
	Chords  []string
	Handler keymap.Handler
}

// Settings is a decoded settings file.
type Settings struct {
	// Update holds only the options present in the file.
	Update options.Update

	KeyHandlers []KeyHandler
}

type decoder struct {
	fs         loader.FileSystem
	dir        string
	scriptOpts []script.Option
}

// normalizeKey folds a settings key so that MaximumHistoryCount,
// maximum_history_count and maximum-history-count are equal.
func normalizeKey(k string) string {
	k = strings.ToLower(k)
	k = strings.ReplaceAll(k, "_", "")
	return strings.ReplaceAll(k, "-", "")
}

func (d *decoder) decode(m map[string]any) (Settings, error) {
	var s Settings
	for k, v := range m {
		var err error
		switch normalizeKey(k) {
		case sectionOptions:
			err = d.decodeOptions(&s.Update, v)
		case sectionColors:
			err = d.decodeColors(&s.Update, v)
		case sectionKeyHandler, "keyhandlers":
			s.KeyHandlers, err = d.decodeKeyHandlers(v)
		default:
			err = errs.NewValidationError(k, "unknown section", nil)
		}
		if err != nil {
			return Settings{}, err
		}
	}
	return s, nil
}

type fieldDecoder func(d *decoder, u *options.Update, field string, v any) error

var optionFields = map[string]fieldDecoder{
	"editmode": func(_ *decoder, u *options.Update, f string, v any) error {
		return enumField(f, v, options.ParseEditMode, &u.EditMode)
	},
	"continuationprompt": func(_ *decoder, u *options.Update, f string, v any) error {
		return stringField(f, v, &u.ContinuationPrompt)
	},
	"extrapromptlinecount": func(_ *decoder, u *options.Update, f string, v any) error {
		return intField(f, v, &u.ExtraPromptLineCount)
	},
	"addtohistoryhandler": func(d *decoder, u *options.Update, f string, v any) error {
		return d.historyHandler(f, v, &u.AddToHistoryHandler)
	},
	"validationhandler": func(d *decoder, u *options.Update, f string, v any) error {
		return d.validationHandler(f, v, &u.ValidationHandler)
	},
	"historynoduplicates": func(_ *decoder, u *options.Update, f string, v any) error {
		return boolField(f, v, &u.HistoryNoDuplicates)
	},
	"maximumhistorycount": func(_ *decoder, u *options.Update, f string, v any) error {
		return intField(f, v, &u.MaximumHistoryCount)
	},
	"maximumkillringcount": func(_ *decoder, u *options.Update, f string, v any) error {
		return intField(f, v, &u.MaximumKillRingCount)
	},
	"historysearchcursormovestoend": func(_ *decoder, u *options.Update, f string, v any) error {
		return boolField(f, v, &u.HistorySearchCursorMovesToEnd)
	},
	"historysearchcasesensitive": func(_ *decoder, u *options.Update, f string, v any) error {
		return boolField(f, v, &u.HistorySearchCaseSensitive)
	},
	"historysavepath": func(d *decoder, u *options.Update, f string, v any) error {
		if err := stringField(f, v, &u.HistorySavePath); err != nil {
			return err
		}
		if p, _ := u.HistorySavePath.Get(); p != "" && !filepath.IsAbs(p) && d.dir != "" {
			u.HistorySavePath = optional.Some(filepath.Join(d.dir, p))
		}
		return nil
	},
	"historysavestyle": func(_ *decoder, u *options.Update, f string, v any) error {
		return enumField(f, v, options.ParseHistorySaveStyle, &u.HistorySaveStyle)
	},
	"showtooltips": func(_ *decoder, u *options.Update, f string, v any) error {
		return boolField(f, v, &u.ShowToolTips)
	},
	"dingtone": func(_ *decoder, u *options.Update, f string, v any) error {
		return intField(f, v, &u.DingTone)
	},
	"dingduration": func(_ *decoder, u *options.Update, f string, v any) error {
		return durationField(f, v, &u.DingDuration)
	},
	"bellstyle": func(_ *decoder, u *options.Update, f string, v any) error {
		return enumField(f, v, options.ParseBellStyle, &u.BellStyle)
	},
	"completionqueryitems": func(_ *decoder, u *options.Update, f string, v any) error {
		return intField(f, v, &u.CompletionQueryItems)
	},
	"worddelimiters": func(_ *decoder, u *options.Update, f string, v any) error {
		return stringField(f, v, &u.WordDelimiters)
	},
	"resettokencolors": func(_ *decoder, u *options.Update, f string, v any) error {
		return boolField(f, v, &u.ResetTokenColors)
	},
}

func (d *decoder) decodeOptions(u *options.Update, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return errs.NewValidationError(sectionOptions, "must be a table", v)
	}
	for _, k := range sortedKeys(m) {
		field := sectionOptions + "." + k
		dec, ok := optionFields[normalizeKey(k)]
		if !ok {
			return errs.NewValidationError(field, "unknown setting", nil)
		}
		if err := dec(d, u, field, m[k]); err != nil {
			return err
		}
	}
	return nil
}

// decodeColors reads slot = "Color" or slot = { fg = ..., bg = ... }.
func (d *decoder) decodeColors(u *options.Update, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return errs.NewValidationError(sectionColors, "must be a table", v)
	}
	for _, k := range sortedKeys(m) {
		field := sectionColors + "." + k
		if normalizeKey(k) == "resettokencolors" {
			if err := boolField(field, m[k], &u.ResetTokenColors); err != nil {
				return err
			}
			continue
		}

		slot, err := palette.ParseSlot(k)
		if err != nil {
			return errs.NewValidationError(field, "unknown color slot", nil)
		}
		o, err := decodeOverride(field, m[k])
		if err != nil {
			return err
		}

		switch slot {
		case palette.SlotEmphasis:
			u.Emphasis = o
		case palette.SlotError:
			u.Error = o
		case palette.SlotContinuationPrompt:
			u.ContinuationPromptColors = o
		default:
			kind, _ := slot.TokenKind()
			if u.TokenColors == nil {
				u.TokenColors = make(map[palette.TokenKind]palette.Override)
			}
			u.TokenColors[kind] = o
		}
	}
	return nil
}

func decodeOverride(field string, v any) (palette.Override, error) {
	var o palette.Override
	if m, ok := v.(map[string]any); ok {
		for _, k := range sortedKeys(m) {
			c, err := colorValue(field+"."+k, m[k])
			if err != nil {
				return o, err
			}
			switch normalizeKey(k) {
			case "fg", "foreground", "foregroundcolor":
				o.FG = optional.Some(c)
			case "bg", "background", "backgroundcolor":
				o.BG = optional.Some(c)
			default:
				return o, errs.NewValidationError(field+"."+k, "expected fg or bg", nil)
			}
		}
		return o, nil
	}
	c, err := colorValue(field, v)
	if err != nil {
		return o, err
	}
	o.FG = optional.Some(c)
	return o, nil
}

func colorValue(field string, v any) (palette.Color, error) {
	switch x := v.(type) {
	case string:
		return palette.ParseColor(x)
	case int64, float64:
		n, err := toInt(field, x)
		if err != nil {
			return 0, err
		}
		return palette.ParseColor(fmt.Sprint(n))
	default:
		return 0, errs.NewValidationError(field, "expected a color", v)
	}
}

func (d *decoder) decodeKeyHandlers(v any) ([]KeyHandler, error) {
	list, ok := v.([]any)
	if !ok {
		if m, isMap := v.(map[string]any); isMap {
			list = []any{m}
		} else {
			return nil, errs.NewValidationError(sectionKeyHandler, "must be a list of tables", v)
		}
	}

	out := make([]KeyHandler, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, errs.NewValidationError(fmt.Sprintf("%s[%d]", sectionKeyHandler, i), "must be a table", item)
		}
		kh, err := d.decodeKeyHandler(fmt.Sprintf("%s[%d]", sectionKeyHandler, i), m)
		if err != nil {
			return nil, err
		}
		out = append(out, kh)
	}
	return out, nil
}

func (d *decoder) decodeKeyHandler(field string, m map[string]any) (KeyHandler, error) {
	var (
		kh                            KeyHandler
		function, source, file        string
		brief, long                   string
		hasFunc, hasScript, hasScFile bool
	)
	for _, k := range sortedKeys(m) {
		f := field + "." + k
		v := m[k]
		var err error
		switch normalizeKey(k) {
		case "chord", "chords", "key":
			kh.Chords, err = stringList(f, v)
		case "function":
			function, err = asString(f, v)
			hasFunc = true
		case "script", "scriptblock":
			source, err = asString(f, v)
			hasScript = true
		case "scriptfile":
			file, err = asString(f, v)
			hasScFile = true
		case "brief", "briefdescription":
			brief, err = asString(f, v)
		case "description", "longdescription":
			long, err = asString(f, v)
		default:
			err = errs.NewValidationError(f, "unknown key", nil)
		}
		if err != nil {
			return KeyHandler{}, err
		}
	}

	n := 0
	for _, b := range []bool{hasFunc, hasScript, hasScFile} {
		if b {
			n++
		}
	}
	if n != 1 {
		return KeyHandler{}, errs.NewValidationError(field, "exactly one of function, script or script_file is required", nil)
	}

	switch {
	case hasFunc:
		kh.Handler = keymap.Function(function)
	case hasScript:
		b, err := script.Compile(field, source, d.scriptOpts...)
		if err != nil {
			return KeyHandler{}, err
		}
		kh.Handler = keymap.BlockHandler(b)
	case hasScFile:
		b, err := d.compileFile(file)
		if err != nil {
			return KeyHandler{}, err
		}
		kh.Handler = keymap.BlockHandler(b)
	}
	kh.Handler = kh.Handler.WithDescriptions(brief, long)
	return kh, nil
}

func (d *decoder) compileFile(path string) (*script.Block, error) {
	if !filepath.IsAbs(path) && d.dir != "" {
		path = filepath.Join(d.dir, path)
	}
	data, err := d.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", path, err)
	}
	return script.Compile(path, string(data), d.scriptOpts...)
}

// historyHandler compiles a Lua predicate: the line is passed as arg and a
// false or nil result keeps it out of history. An empty string clears the
// handler.
func (d *decoder) historyHandler(field string, v any, dst *optional.Value[options.AddToHistoryFunc]) error {
	src, err := asString(field, v)
	if err != nil {
		return err
	}
	if src == "" {
		*dst = optional.Some[options.AddToHistoryFunc](nil)
		return nil
	}
	b, err := script.Compile(field, src, d.scriptOpts...)
	if err != nil {
		return err
	}
	*dst = optional.Some(options.AddToHistoryFunc(func(line string) bool {
		res, err := b.Eval(line)
		if err != nil {
			return true
		}
		ok, isBool := res.(bool)
		return res != nil && (!isBool || ok)
	}))
	return nil
}

// validationHandler compiles a Lua check: the line is passed as arg and a
// string result rejects it with that message. An empty string clears the
// handler.
func (d *decoder) validationHandler(field string, v any, dst *optional.Value[options.ValidationFunc]) error {
	src, err := asString(field, v)
	if err != nil {
		return err
	}
	if src == "" {
		*dst = optional.Some[options.ValidationFunc](nil)
		return nil
	}
	b, err := script.Compile(field, src, d.scriptOpts...)
	if err != nil {
		return err
	}
	*dst = optional.Some(options.ValidationFunc(func(line string) error {
		res, err := b.Eval(line)
		if err != nil {
			return err
		}
		if msg, ok := res.(string); ok && msg != "" {
			return errors.New(msg)
		}
		return nil
	}))
	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func asString(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errs.NewValidationError(field, "expected a string", v)
	}
	return s, nil
}

func stringList(field string, v any) ([]string, error) {
	switch x := v.(type) {
	case string:
		return []string{x}, nil
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			s, err := asString(field, e)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, errs.NewValidationError(field, "expected a string or list of strings", v)
	}
}

func toInt(field string, v any) (int, error) {
	switch x := v.(type) {
	case int64:
		return int(x), nil
	case int:
		return x, nil
	case float64:
		if x != math.Trunc(x) {
			return 0, errs.NewValidationError(field, "expected a whole number", v)
		}
		return int(x), nil
	default:
		return 0, errs.NewValidationError(field, "expected a number", v)
	}
}

// stringField also accepts the numbers and booleans the environment layer
// produces for values such as LINECONF_CONTINUATION_PROMPT=1.
func stringField(field string, v any, dst *optional.Value[string]) error {
	switch x := v.(type) {
	case int64, bool:
		*dst = optional.Some(fmt.Sprint(x))
		return nil
	}
	s, err := asString(field, v)
	if err != nil {
		return err
	}
	*dst = optional.Some(s)
	return nil
}

func intField(field string, v any, dst *optional.Value[int]) error {
	n, err := toInt(field, v)
	if err != nil {
		return err
	}
	*dst = optional.Some(n)
	return nil
}

func boolField(field string, v any, dst *optional.Value[bool]) error {
	b, ok := v.(bool)
	if !ok {
		return errs.NewValidationError(field, "expected true or false", v)
	}
	*dst = optional.Some(b)
	return nil
}

// durationField accepts a duration string ("50ms") or a whole number of
// milliseconds.
func durationField(field string, v any, dst *optional.Value[time.Duration]) error {
	switch x := v.(type) {
	case time.Duration:
		*dst = optional.Some(x)
	case string:
		d, err := time.ParseDuration(x)
		if err != nil {
			return errs.NewValidationError(field, "invalid duration", v)
		}
		*dst = optional.Some(d)
	default:
		n, err := toInt(field, v)
		if err != nil {
			return err
		}
		*dst = optional.Some(time.Duration(n) * time.Millisecond)
	}
	return nil
}

func enumField[T any](field string, v any, parse func(string) (T, error), dst *optional.Value[T]) error {
	s, err := asString(field, v)
	if err != nil {
		return err
	}
	val, err := parse(s)
	if err != nil {
		return errs.NewValidationError(field, "unknown value", s)
	}
	*dst = optional.Some(val)
	return nil
}
