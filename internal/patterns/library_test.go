package patterns

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDefault_CompilesEverything(t *testing.T) {
	lib := Default()

	assert.Empty(t, lib.Skipped())
	assert.NotEmpty(t, lib.GroupMarkers())
	assert.NotEmpty(t, lib.QuestionMarkers())
	assert.Len(t, lib.MemberMarkers(1), len(DefaultDefinition().MemberTemplates))
	assert.Len(t, lib.MemberMarkers(MaxQuestionNumber), len(DefaultDefinition().MemberTemplates))
	assert.Empty(t, lib.MemberMarkers(MaxQuestionNumber+1))

	for _, id := range []string{OptionBracketed, OptionLine, OptionLoose} {
		_, ok := lib.OptionMarker(id)
		assert.True(t, ok, "option marker %s", id)
	}
}

func TestDefault_IsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestCompile_SkipsMalformedEntries(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	def := DefaultDefinition()
	def.GroupMarkers = append(def.GroupMarkers,
		PatternDef{ID: "broken", Expr: `questions (\d+`},
		PatternDef{ID: "no-groups", Expr: `questions \d+`},
	)
	def.MemberTemplates = append(def.MemberTemplates, PatternDef{ID: "no-placeholder", Expr: `^Q`})

	lib := Compile(def, zap.New(core))

	assert.Len(t, lib.GroupMarkers(), len(DefaultDefinition().GroupMarkers))
	assert.ElementsMatch(t, []string{
		"group_markers/broken",
		"group_markers/no-groups",
		"member_templates/no-placeholder",
	}, lib.Skipped())
	assert.Equal(t, 3, logs.FilterMessage("skipping pattern").Len())
}

func TestHasInterrogative(t *testing.T) {
	lib := Default()

	tests := []struct {
		text string
		want bool
	}{
		{"Which of the following is correct", true},
		{"What is 2+2", true},
		{"下列何者正確", true},
		{"Show your work", false}, // "how" inside "show"
		{"The capital of France", false},
		{"Is it raining?", true},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, lib.HasInterrogative(tt.text))
		})
	}
}

func TestDenylistHit(t *testing.T) {
	lib := Default()

	hit, ok := lib.DenylistHit("ISBN 978-3-16-148410-0")
	assert.True(t, ok)
	assert.Equal(t, "ISBN", hit)

	_, ok = lib.DenylistHit("Which river is longest?")
	assert.False(t, ok)

	_, ok = lib.DenylistHit("本試卷版權所有")
	assert.True(t, ok)
}

func TestIsOptionGlyph(t *testing.T) {
	lib := Default()

	assert.True(t, lib.IsOptionGlyph('\uE000'))
	assert.True(t, lib.IsOptionGlyph('Ⓐ'))
	assert.True(t, lib.IsOptionGlyph('①'))
	assert.False(t, lib.IsOptionGlyph('A'))
	assert.True(t, lib.HasOptionGlyph("went ⓐ go ⓑ goes"))
	assert.False(t, lib.HasOptionGlyph("(A) go (B) goes"))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"full-width brackets", "（Ａ）蘋果", "(A)蘋果"},
		{"full-width digits and colon", "１２：Ｗｈｉｃｈ？", "12:Which?"},
		{"crlf", "1. a\r\n2. b\r", "1. a\n2. b\n"},
		{"glyphs preserved", "ⓐ go ⓑ went", "ⓐ go ⓑ went"},
		{"no-break space", "1. Which", "1. Which"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestLoadAndExport_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, Default()))

	lib, err := Load(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, Default().Version(), lib.Version())
	assert.Empty(t, lib.Skipped())
	assert.Equal(t, len(Default().QuestionMarkers()), len(lib.QuestionMarkers()))
	assert.Equal(t, Default().Fingerprint(), lib.Fingerprint())
}

func TestFingerprint(t *testing.T) {
	base := Default().Fingerprint()
	assert.True(t, strings.HasPrefix(base, "2024.1@"))
	assert.Equal(t, base, Compile(DefaultDefinition(), nil).Fingerprint())

	def := DefaultDefinition()
	def.Denylist = append(def.Denylist, "answer sheet")
	edited := Compile(def, nil)
	assert.Equal(t, Default().Version(), edited.Version())
	assert.NotEqual(t, base, edited.Fingerprint())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(strings.NewReader("group_markers: []\n"), nil)
	assert.Error(t, err, "missing version")

	_, err = Load(strings.NewReader("version: x\nunknown_field: 1\n"), nil)
	assert.Error(t, err, "unknown field")

	_, err = LoadFile("does-not-exist.yaml", nil)
	assert.Error(t, err)
}

func TestRuneLen(t *testing.T) {
	assert.Equal(t, 4, RuneLen("  下列何者 "))
	assert.Equal(t, 0, RuneLen("   "))
}
