package source

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"data/tradelines.tsv", FormatTSV, false},
		{"export.TXT", FormatTSV, false},
		{"/tmp/a.csv", FormatCSV, false},
		{"book.xlsx", FormatXLSX, false},
		{"book.xls", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnsupported)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDelimited_TSV(t *testing.T) {
	in := "crn\tloan_type\tsanction_amount\n" +
		"100\tCredit Card\t50000\n" +
		"\n" +
		"100\tPersonal Loan\n" +
		"200\tHousing Loan\t2500000\textra\n"

	list, err := ParseDelimited(strings.NewReader(in), '\t')
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "Credit Card", list[0].LoanType())
	assert.Equal(t, "50000", list[0].Get("sanction_amount"))

	_, ok := list[1]["sanction_amount"]
	assert.False(t, ok, "short row leaves column absent")

	assert.Equal(t, int64(200), list[2].CRN())
	assert.Len(t, list[2], 3)
}

func TestParseDelimited_CSV(t *testing.T) {
	in := "\ufeff crn ,loan_type,sector\n" +
		"7,\"Auto Loan, Used\",KOTAK PRIME\n"

	list, err := ParseDelimited(strings.NewReader(in), ',')
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].CRN())
	assert.Equal(t, "Auto Loan, Used", list[0].LoanType())
	assert.Equal(t, "KOTAK PRIME", list[0].Get("sector"))
}

func TestParseDelimited_Errors(t *testing.T) {
	_, err := ParseDelimited(strings.NewReader(""), '\t')
	assert.Error(t, err)

	_, err = ParseDelimited(strings.NewReader("id\tloan_type\n1\tCC\n"), '\t')
	assert.ErrorContains(t, err, "crn")
}

func TestParseDelimited_HeaderOnly(t *testing.T) {
	list, err := ParseDelimited(strings.NewReader("crn\tloan_type\n"), '\t')
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestParse_UnknownFormat(t *testing.T) {
	_, err := Parse([]byte("crn\n1\n"), Format("json"), "")
	assert.ErrorIs(t, err, ErrUnsupported)
}
