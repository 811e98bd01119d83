package csvimport

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowErrorError(t *testing.T) {
	withColumn := NewRowError(5, "Shipping Zip", WarnInvalidLine, "too long")
	assert.Equal(t, `row 5, column "Shipping Zip": too long`, withColumn.Error())

	withoutColumn := NewRowError(7, "", WarnMissingIdentity, "no shipping name")
	assert.Equal(t, "row 7: no shipping name", withoutColumn.Error())
}

func TestErrorCollection(t *testing.T) {
	t.Run("empty collection", func(t *testing.T) {
		ec := NewErrorCollection(10)
		assert.False(t, ec.HasErrors())
		assert.False(t, ec.IsTruncated())
		assert.Equal(t, "no errors", ec.String())
	})

	t.Run("collects and formats", func(t *testing.T) {
		ec := NewErrorCollection(10)
		ec.Addf(3, "Lineitem quantity", WarnInvalidQuantity, "invalid quantity %q", "abc")

		assert.True(t, ec.HasErrors())
		assert.Equal(t, 1, ec.TotalCount())
		assert.Equal(t, `invalid quantity "abc"`, ec.Errors()[0].Message)
		assert.Contains(t, ec.String(), "1 condition(s)")
	})

	t.Run("caps stored details but keeps the count", func(t *testing.T) {
		ec := NewErrorCollection(3)
		for i := 1; i <= 5; i++ {
			ec.Add(NewRowError(i, "", WarnUnknownSize, fmt.Sprintf("row %d", i)))
		}

		assert.Len(t, ec.Errors(), 3)
		assert.Equal(t, 5, ec.TotalCount())
		assert.True(t, ec.IsTruncated())
		assert.Contains(t, ec.String(), "showing first 3")
	})

	t.Run("zero max falls back to the default cap", func(t *testing.T) {
		ec := NewErrorCollection(0)
		for i := 0; i < 150; i++ {
			ec.Add(NewRowError(i, "", WarnUnknownSize, "x"))
		}
		assert.Len(t, ec.Errors(), 100)
		assert.Equal(t, 150, ec.TotalCount())
	})
}
