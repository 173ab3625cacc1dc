package asm

import (
	"reflect"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// encodeWords converts instruction words to big-endian bytes.
func encodeWords(words ...uint16) []byte {
	out := make([]byte, len(words)*2)
	for i, w := range words {
		out[i*2] = byte(w >> 8)
		out[i*2+1] = byte(w & 0xFF)
	}
	return out
}

func TestHelperFunctions(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"abc", true},
		{"_abc", true},
		{"abc1", true},
		{"1abc", false},
		{"", false},
		{"ab-c", false},
	}
	for _, tc := range tests {
		if got := isIdentifier(tc.input); got != tc.want {
			t.Errorf("isIdentifier(%q) = %v; want %v", tc.input, got, tc.want)
		}
	}

	assert.Equal(t, "LABEL", normalizeLabel("label"))

	regTests := []struct {
		token  string
		want   uint16
		wantOk bool
	}{
		{"V0", 0, true},
		{"v9", 9, true},
		{"VA", 0xA, true},
		{"vf", 0xF, true},
		{"VG", 0, false},
		{"V10", 0, false},
		{"R0", 0, false},
		{"I", 0, false},
	}
	for _, tc := range regTests {
		got, ok := registerIndex(tc.token)
		if got != tc.want || ok != tc.wantOk {
			t.Errorf("registerIndex(%q) = %d, %v; want %d, %v", tc.token, got, ok, tc.want, tc.wantOk)
		}
	}

	assert.Equal(t, true, isReserved("DT"))
	assert.Equal(t, true, isReserved("vb"))
	assert.Equal(t, false, isReserved("loop"))
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		line    string
		want    parsedLine
		wantErr bool
	}{
		{
			"LD V0, 5",
			parsedLine{lineNo: 1, mnemonic: "LD", operands: []string{"V0", "5"}},
			false,
		},
		{
			"  add v0, v1  ; comment",
			parsedLine{lineNo: 1, mnemonic: "ADD", operands: []string{"v0", "v1"}},
			false,
		},
		{
			"START: CLS",
			parsedLine{lineNo: 1, labels: []string{"START"}, mnemonic: "CLS"},
			false,
		},
		{
			"LABEL1: LABEL2: RET",
			parsedLine{lineNo: 1, labels: []string{"LABEL1", "LABEL2"}, mnemonic: "RET"},
			false,
		},
		{
			"LD [I], V3",
			parsedLine{lineNo: 1, mnemonic: "LD", operands: []string{"[I]", "V3"}},
			false,
		},
		{
			".org 0x300",
			parsedLine{lineNo: 1, mnemonic: ".ORG", operands: []string{"0x300"}},
			false,
		},
		{
			".BYTE 0xF0, 0x90, 0x90",
			parsedLine{lineNo: 1, mnemonic: ".BYTE", operands: []string{"0xF0", "0x90", "0x90"}},
			false,
		},
		{
			"; only a comment",
			parsedLine{lineNo: 1},
			false,
		},
		// Invalid cases
		{"1LABEL: CLS", parsedLine{lineNo: 1}, true},
		{"VF: CLS", parsedLine{lineNo: 1}, true},
		{"DT: CLS", parsedLine{lineNo: 1}, true},
		{".ORG", parsedLine{lineNo: 1}, true},
	}

	for _, tc := range tests {
		got, err := parseLine(tc.line, 1)
		if (err != nil) != tc.wantErr {
			t.Errorf("parseLine(%q) error = %v, wantErr %v", tc.line, err, tc.wantErr)
			continue
		}
		if tc.wantErr {
			continue
		}
		if got.mnemonic != tc.want.mnemonic {
			t.Errorf("parseLine(%q) mnemonic = %q, want %q", tc.line, got.mnemonic, tc.want.mnemonic)
		}
		if !reflect.DeepEqual(got.labels, tc.want.labels) && !(len(got.labels) == 0 && len(tc.want.labels) == 0) {
			t.Errorf("parseLine(%q) labels = %v, want %v", tc.line, got.labels, tc.want.labels)
		}
		if !reflect.DeepEqual(got.operands, tc.want.operands) && !(len(got.operands) == 0 && len(tc.want.operands) == 0) {
			t.Errorf("parseLine(%q) operands = %v, want %v", tc.line, got.operands, tc.want.operands)
		}
	}
}

func TestAssembleInstructions(t *testing.T) {
	tests := []struct {
		source string
		want   uint16
	}{
		{"CLS", 0x00E0},
		{"RET", 0x00EE},
		{"SYS 0x123", 0x0123},
		{"JP 0x2A0", 0x12A0},
		{"CALL 0x300", 0x2300},
		{"SE V1, 0x42", 0x3142},
		{"SNE V1, 66", 0x4142},
		{"SE V1, V2", 0x5120},
		{"LD VA, 0xFF", 0x6AFF},
		{"ADD V3, 1", 0x7301},
		{"LD V1, V2", 0x8120},
		{"OR V1, V2", 0x8121},
		{"AND V1, V2", 0x8122},
		{"XOR V1, V2", 0x8123},
		{"ADD V1, V2", 0x8124},
		{"SUB V1, V2", 0x8125},
		{"SHR V1", 0x8106},
		{"SHR V1, V2", 0x8126},
		{"SUBN V1, V2", 0x8127},
		{"SHL V1", 0x810E},
		{"SHL V1, V2", 0x812E},
		{"SNE V1, V2", 0x9120},
		{"LD I, 0x222", 0xA222},
		{"JP V0, 0x400", 0xB400},
		{"RND V5, 0x0F", 0xC50F},
		{"DRW V0, V1, 5", 0xD015},
		{"SKP V5", 0xE59E},
		{"SKNP V5", 0xE5A1},
		{"LD V2, DT", 0xF207},
		{"LD V2, K", 0xF20A},
		{"LD DT, V2", 0xF215},
		{"LD ST, V2", 0xF218},
		{"ADD I, V2", 0xF21E},
		{"LD F, V2", 0xF229},
		{"LD B, V2", 0xF233},
		{"LD [I], V2", 0xF255},
		{"LD V2, [I]", 0xF265},
		{"ld vf, 0b1010", 0x6F0A},
	}

	for _, tc := range tests {
		got, _, err := Assemble(tc.source)
		assert.NoError(t, err)
		assert.Equal(t, encodeWords(tc.want), got)
	}
}

func TestAssemble(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		want    []byte
		wantErr bool
	}{
		{
			"Labels and Jumps",
			// 0x200 LD V0, 5
			// 0x202 LOOP: ADD V0, 0xFF
			// 0x204 SE V0, 0
			// 0x206 JP LOOP
			// 0x208 END: JP END
			`
			LD V0, 5
			LOOP:
			ADD V0, 0xFF
			SE V0, 0
			JP LOOP
			END: JP END
			`,
			encodeWords(0x6005, 0x70FF, 0x3000, 0x1202, 0x1208),
			false,
		},
		{
			"Forward reference",
			`
			LD I, sprite
			DRW V0, V0, 1
			sprite: .BYTE 0x80
			`,
			append(encodeWords(0xA204, 0xD001), 0x80),
			false,
		},
		{
			".ORG",
			`
			CLS
			.ORG 0x206
			RET
			`,
			append(append(encodeWords(0x00E0), 0, 0, 0, 0), encodeWords(0x00EE)...),
			false,
		},
		{
			".WORD",
			`
			.WORD 0x1234, 0xABCD
			`,
			[]byte{0x12, 0x34, 0xAB, 0xCD},
			false,
		},
		{
			"Comments",
			`
			; Comment
			CLS // Comment
			`,
			encodeWords(0x00E0),
			false,
		},
		{
			"Label only line",
			`
			START:
			JP START
			`,
			encodeWords(0x1200),
			false,
		},
		// Errors
		{"Unknown Instruction", `FOOBAR V0`, nil, true},
		{"Duplicate Label", "L: CLS\nL: RET", nil, true},
		{"Invalid Register", `ADD V0, VG`, nil, true},
		{"Invalid Operand Count", `DRW V0, V1`, nil, true},
		{"Undefined Label", `JP NOWHERE`, nil, true},
		{"Byte Out Of Range", `LD V0, 0x100`, nil, true},
		{"Address Out Of Range", `JP 0x1000`, nil, true},
		{"Nibble Out Of Range", `DRW V0, V1, 16`, nil, true},
		{"JP Offset Needs V0", `JP V1, 0x300`, nil, true},
		{".ORG Backward", "CLS\nCLS\n.ORG 0x200", nil, true},
		{".ORG Below Program Start", `.ORG 0x100`, nil, true},
		{"Program Too Large", ".ORG 0xFFF\nCLS", nil, true},
		{"Empty .BYTE", `.BYTE`, nil, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, _, err := Assemble(tc.code)
			if (err != nil) != tc.wantErr {
				t.Errorf("Assemble() error = %v, wantErr %v", err, tc.wantErr)
				return
			}
			if !tc.wantErr && !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Assemble() = % X, want % X", got, tc.want)
			}
		})
	}
}

func TestAssembleErrorsCarryLineNumbers(t *testing.T) {
	_, _, err := Assemble("CLS\n\nLD V0, V1, V2\n")
	if err == nil {
		t.Fatal("expected an error")
	}
	assert.Equal(t, "LD expects 2 operands on line 3", err.Error())
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"CLS", "CLS"},
		{"LD V0, 1 ; comment", "LD V0, 1 "},
		{"LD V0, 1 // comment", "LD V0, 1 "},
		{"// comment", ""},
		{"; comment", ""},
		{"LD V0, 1 ; first // second", "LD V0, 1 "},
	}
	for _, tc := range tests {
		if got := stripComments(tc.input); got != tc.want {
			t.Errorf("stripComments(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
