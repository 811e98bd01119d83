package csvimport

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser(t *testing.T) {
	t.Run("rejects empty input", func(t *testing.T) {
		_, err := NewParser(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("rejects invalid UTF-8", func(t *testing.T) {
		_, err := ParseFromBytes([]byte{0xFF, 0xFE, 0x41, 0x42})
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})

	t.Run("strips BOM", func(t *testing.T) {
		p, err := ParseFromBytes([]byte("\xEF\xBB\xBFName,Email\nAlice,a@example.com\n"))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())
		assert.Equal(t, []string{"Name", "Email"}, p.Headers())
	})
}

func TestParseHeader(t *testing.T) {
	t.Run("builds column index", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("Name, Financial Status ,Lineitem name\n"))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())

		assert.True(t, p.HasHeader("Name"))
		assert.True(t, p.HasHeader("Financial Status"), "headers are trimmed")
		assert.False(t, p.HasHeader("Missing"))
	})

	t.Run("reports missing required headers", func(t *testing.T) {
		p, err := NewParser(strings.NewReader("Name,Shipping Name\n"))
		require.NoError(t, err)
		require.NoError(t, p.ParseHeader())

		missing := p.MissingHeaders([]string{"Name", "Financial Status", "Shipping Zip"})
		assert.Equal(t, []string{"Financial Status", "Shipping Zip"}, missing)
	})
}

func TestReadAllRows(t *testing.T) {
	input := strings.Join([]string{
		"Name,Financial Status,Lineitem name",
		"#1001,paid,Mitten A",
		",,",
		`#1002,,"Mitten, B"`,
		"#1003,paid",
	}, "\n")

	p, err := NewParser(strings.NewReader(input))
	require.NoError(t, err)
	require.NoError(t, p.ParseHeader())

	rows, err := p.ReadAllRows()
	require.NoError(t, err)
	require.Len(t, rows, 3, "fully empty lines are skipped")

	assert.Equal(t, 2, rows[0].LineNumber)
	assert.Equal(t, "#1001", rows[0].Get("Name"))
	assert.Equal(t, "paid", rows[0].Get("Financial Status"))

	assert.Equal(t, "Mitten, B", rows[1].Get("Lineitem name"), "quoted commas survive")
	assert.Equal(t, "", rows[1].Get("Financial Status"))

	assert.Equal(t, "", rows[2].Get("Lineitem name"), "short rows read as empty fields")
	assert.Equal(t, "", rows[2].Get("Unknown Column"))
}

func TestRowIsEmpty(t *testing.T) {
	assert.True(t, (&Row{Data: map[string]string{"a": "", "b": ""}}).IsEmpty())
	assert.False(t, (&Row{Data: map[string]string{"a": "x"}}).IsEmpty())
}

func TestWithDelimiter(t *testing.T) {
	p, err := NewParser(strings.NewReader("a;b\n1;2\n"), WithDelimiter(';'))
	require.NoError(t, err)
	require.NoError(t, p.ParseHeader())

	rows, err := p.ReadAllRows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0].Get("b"))
}
