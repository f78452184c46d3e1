package options

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/lineconf/internal/config/notify"
	"github.com/dshills/lineconf/internal/errs"
	"github.com/dshills/lineconf/internal/optional"
	"github.com/dshills/lineconf/internal/palette"
)

func TestDefaults(t *testing.T) {
	c := Defaults("test")

	assert.Equal(t, EditModeWindows, c.EditMode)
	assert.Equal(t, ">>> ", c.ContinuationPrompt)
	assert.Equal(t, 0, c.ExtraPromptLineCount)
	assert.Equal(t, 1024, c.MaximumHistoryCount)
	assert.Equal(t, 10, c.MaximumKillRingCount)
	assert.Equal(t, 1221, c.DingTone)
	assert.Equal(t, 50*time.Millisecond, c.DingDuration)
	assert.Equal(t, BellAudible, c.BellStyle)
	assert.Equal(t, 100, c.CompletionQueryItems)
	assert.Equal(t, SaveIncrementally, c.HistorySaveStyle)
	assert.True(t, strings.HasSuffix(c.HistorySavePath, "test_history.txt"), c.HistorySavePath)
	assert.Nil(t, c.AddToHistoryHandler)
	assert.Nil(t, c.ValidationHandler)
	assert.Equal(t, palette.Defaults(palette.DefaultTerminal), c.Palette)
}

func TestWordDelimiters(t *testing.T) {
	c := Defaults("test")
	for _, r := range ";:,.[]{}()/\\|^&*-=+–—― \t" {
		assert.True(t, c.IsWordDelimiter(r), "%q", r)
	}
	for _, r := range "aZ9_$" {
		assert.False(t, c.IsWordDelimiter(r), "%q", r)
	}
}

func TestHistoryComparison(t *testing.T) {
	c := Defaults("test")
	assert.True(t, c.HistoryEqual("Get-Item", "get-item"))
	assert.True(t, c.HistoryHasPrefix("Get-Item x", "get-"))
	assert.False(t, c.HistoryHasPrefix("get", "get-item"))

	c.HistorySearchCaseSensitive = true
	assert.False(t, c.HistoryEqual("Get-Item", "get-item"))
	assert.False(t, c.HistoryHasPrefix("Get-Item", "get"))
}

func TestEnumParsing(t *testing.T) {
	m, err := ParseEditMode("emacs")
	require.NoError(t, err)
	assert.Equal(t, EditModeEmacs, m)

	b, err := ParseBellStyle(" visual ")
	require.NoError(t, err)
	assert.Equal(t, BellVisual, b)

	h, err := ParseHistorySaveStyle("SAVEATEXIT")
	require.NoError(t, err)
	assert.Equal(t, SaveAtExit, h)

	_, err = ParseBellStyle("loud")
	assert.ErrorIs(t, err, errs.ErrParse)

	var s HistorySaveStyle
	require.NoError(t, s.UnmarshalText([]byte("SaveNothing")))
	assert.Equal(t, SaveNothing, s)
	text, _ := s.MarshalText()
	assert.Equal(t, "SaveNothing", string(text))

	assert.Equal(t, "BellStyle(9)", BellStyle(9).String())
}

// fieldsDiffer lists the Configuration fields whose values differ. Func
// fields compare by identity.
func fieldsDiffer(a, b Configuration) []string {
	var out []string
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	for i := range av.NumField() {
		fa, fb := av.Field(i), bv.Field(i)
		var same bool
		if fa.Kind() == reflect.Func {
			same = fa.Pointer() == fb.Pointer()
		} else {
			same = reflect.DeepEqual(fa.Interface(), fb.Interface())
		}
		if !same {
			out = append(out, av.Type().Field(i).Name)
		}
	}
	return out
}

func TestApplySparse(t *testing.T) {
	base := Defaults("test")

	tests := []struct {
		name   string
		update Update
		want   []string
	}{
		{"empty", Update{}, nil},
		{"history count", Update{MaximumHistoryCount: optional.Some(500)}, []string{"MaximumHistoryCount"}},
		{"zero is a value", Update{ExtraPromptLineCount: optional.Some(0), DingTone: optional.Some(0)}, []string{"DingTone"}},
		{"two fields", Update{
			BellStyle:      optional.Some(BellNone),
			WordDelimiters: optional.Some(""),
		}, []string{"BellStyle", "WordDelimiters"}},
		{"emphasis only", Update{
			Emphasis: palette.Override{FG: optional.Some(palette.Magenta)},
		}, []string{"Palette"}},
		{"reset false", Update{ResetTokenColors: optional.Some(false)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(base, tt.update)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fieldsDiffer(base, got))
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	base := Defaults("test")
	snapshot := base

	_, err := Apply(base, Update{
		MaximumHistoryCount: optional.Some(1),
		ResetTokenColors:    optional.Some(true),
		Error:               palette.Override{BG: optional.Some(palette.White)},
	})
	require.NoError(t, err)
	assert.Empty(t, fieldsDiffer(snapshot, base))
}

func TestApplyResetThenOverride(t *testing.T) {
	base := Defaults("test")
	custom, err := Apply(base, Update{
		TokenColors: map[palette.TokenKind]palette.Override{
			palette.TokenKeyword: {FG: optional.Some(palette.Red)},
			palette.TokenString:  {BG: optional.Some(palette.Blue)},
		},
		Error: palette.Override{FG: optional.Some(palette.Yellow)},
	})
	require.NoError(t, err)
	require.NotEqual(t, base.Palette, custom.Palette)

	got, err := Apply(custom, Update{
		ResetTokenColors: optional.Some(true),
		Emphasis:         palette.Override{FG: optional.Some(palette.DarkMagenta)},
	})
	require.NoError(t, err)

	want := palette.Defaults(palette.DefaultTerminal)
	want.Emphasis.FG = palette.DarkMagenta
	assert.Equal(t, want, got.Palette)
}

func TestApplyRoundTrip(t *testing.T) {
	start := Defaults("test")

	c, err := Apply(start, Update{MaximumHistoryCount: optional.Some(500)})
	require.NoError(t, err)
	c, err = Apply(c, Update{BellStyle: optional.Some(BellNone)})
	require.NoError(t, err)

	assert.Equal(t, 500, c.MaximumHistoryCount)
	assert.Equal(t, BellNone, c.BellStyle)
	assert.ElementsMatch(t, []string{"MaximumHistoryCount", "BellStyle"}, fieldsDiffer(start, c))
}

func TestApplyHandlerPresence(t *testing.T) {
	base := Defaults("test")
	skipSecrets := AddToHistoryFunc(func(line string) bool {
		return !strings.Contains(line, "password")
	})
	validate := ValidationFunc(func(line string) error {
		if line == "" {
			return errors.New("empty")
		}
		return nil
	})

	c, err := Apply(base, Update{
		AddToHistoryHandler: optional.Some(skipSecrets),
		ValidationHandler:   optional.Some(validate),
	})
	require.NoError(t, err)
	require.NotNil(t, c.AddToHistoryHandler)
	assert.False(t, c.AddToHistoryHandler("password=x"))

	// absent leaves the handler alone
	c, err = Apply(c, Update{ShowToolTips: optional.Some(true)})
	require.NoError(t, err)
	assert.NotNil(t, c.AddToHistoryHandler)
	assert.NotNil(t, c.ValidationHandler)

	// present with nil clears it
	c, err = Apply(c, Update{AddToHistoryHandler: optional.Some[AddToHistoryFunc](nil)})
	require.NoError(t, err)
	assert.Nil(t, c.AddToHistoryHandler)
	assert.NotNil(t, c.ValidationHandler)
}

func TestApplyValidation(t *testing.T) {
	base := Defaults("test")

	tests := []struct {
		name   string
		update Update
		field  string
	}{
		{"negative history", Update{MaximumHistoryCount: optional.Some(-1)}, "MaximumHistoryCount"},
		{"negative kill ring", Update{MaximumKillRingCount: optional.Some(-5)}, "MaximumKillRingCount"},
		{"empty save path", Update{HistorySavePath: optional.Some("")}, "HistorySavePath"},
		{"bad bell", Update{BellStyle: optional.Some(BellStyle(7))}, "BellStyle"},
		{"bad mode", Update{EditMode: optional.Some(EditMode(3))}, "EditMode"},
		{"bad save style", Update{HistorySaveStyle: optional.Some(HistorySaveStyle(9))}, "HistorySaveStyle"},
		{"negative ding", Update{DingDuration: optional.Some(-time.Second)}, "DingDuration"},
		{"bad color", Update{Emphasis: palette.Override{FG: optional.Some(palette.Color(42))}}, "EmphasisForegroundColor"},
		{"bad token", Update{TokenColors: map[palette.TokenKind]palette.Override{
			palette.NumTokenKinds: {FG: optional.Some(palette.Red)},
		}}, "TokenKind"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(base, tt.update)
			require.ErrorIs(t, err, errs.ErrValidation)
			var ve *errs.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestUpdateFields(t *testing.T) {
	u := Update{
		ShowToolTips:     optional.Some(false),
		ResetTokenColors: optional.Some(true),
		TokenColors: map[palette.TokenKind]palette.Override{
			palette.TokenNumber:  {FG: optional.Some(palette.Red)},
			palette.TokenComment: {},
		},
	}
	assert.Equal(t, []string{"ShowToolTips", "ResetTokenColors", "Palette.Number"}, u.Fields())
	assert.False(t, u.IsEmpty())
	assert.True(t, (&Update{}).IsEmpty())
}

func TestStoreApply(t *testing.T) {
	n := notify.New()
	defer n.Close()
	s := NewStore("test", WithNotifier(n))

	var changes []notify.Change
	s.Subscribe(func(c notify.Change) { changes = append(changes, c) })

	require.NoError(t, s.Apply(Update{
		MaximumHistoryCount: optional.Some(500),
		AddToHistoryHandler: optional.Some(AddToHistoryFunc(func(string) bool { return true })),
		Error:               palette.Override{FG: optional.Some(palette.Magenta)},
	}))
	assert.Equal(t, 500, s.Get().MaximumHistoryCount)

	require.Len(t, changes, 3)
	assert.Equal(t, "options.AddToHistoryHandler", changes[0].Path)
	assert.Equal(t, false, changes[0].OldValue)
	assert.Equal(t, true, changes[0].NewValue)
	assert.Equal(t, notify.Change{
		Path: "options.MaximumHistoryCount", Type: notify.ChangeSet,
		OldValue: 1024, NewValue: 500, Source: "apply",
	}, changes[1])
	assert.Equal(t, "palette.Error", changes[2].Path)
	assert.Equal(t, palette.Magenta, changes[2].NewValue.(palette.Pair).FG)

	before := s.Get()
	err := s.Apply(Update{MaximumHistoryCount: optional.Some(-1), ShowToolTips: optional.Some(true)})
	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Empty(t, fieldsDiffer(before, s.Get()))
	assert.Len(t, changes, 3)
}

func TestStoreSetColor(t *testing.T) {
	s := NewStore("test", WithTerminal(palette.Pair{FG: palette.White, BG: palette.DarkBlue}))
	assert.Equal(t, palette.White, s.Get().Palette.Token(palette.TokenNone).FG)

	changed, err := s.SetColor(palette.TokenSlot(palette.TokenComment), palette.Override{BG: optional.Some(palette.Black)})
	require.NoError(t, err)
	assert.True(t, changed)
	got := s.Get().Palette.Token(palette.TokenComment)
	assert.Equal(t, palette.Pair{FG: palette.DarkGreen, BG: palette.Black}, got)

	changed, err = s.SetColor(palette.SlotError, palette.Override{})
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = s.SetColor(palette.Slot(200), palette.Override{FG: optional.Some(palette.Red)})
	assert.ErrorIs(t, err, errs.ErrValidation)

	require.NoError(t, s.Apply(Update{ResetTokenColors: optional.Some(true)}))
	assert.Equal(t, palette.Defaults(s.Terminal()), s.Get().Palette)
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore("test")

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				c := s.Get()
				// Both fields are written by every update below.
				if c.MaximumHistoryCount != c.CompletionQueryItems*10 && c.MaximumHistoryCount != 1024 {
					t.Errorf("torn snapshot: %d/%d", c.MaximumHistoryCount, c.CompletionQueryItems)
					return
				}
			}
		}()
	}

	for i := 1; i <= 200; i++ {
		require.NoError(t, s.Apply(Update{
			MaximumHistoryCount:  optional.Some(i * 10),
			CompletionQueryItems: optional.Some(i),
		}))
	}
	close(stop)
	wg.Wait()
}
