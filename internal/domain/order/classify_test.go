package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		country string
		want    DestinationBucket
	}{
		{"SG", BucketDomestic},
		{"US", BucketUSRestricted},
		{"CA", BucketExcluded},
		{"", BucketExcluded},
		{"  ", BucketExcluded},
		{"GB", BucketInternationalStandard},
		{"AU", BucketInternationalStandard},
		{"sg", BucketDomestic},
		{" us ", BucketUSRestricted},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.country), "country %q", tt.country)
	}
}

func TestClassifyAll(t *testing.T) {
	merged := []MergedOrder{
		{RawRow: RawRow{OrderNumber: "1001", CountryCode: "SG", Description: "Eczema Mitten - Cotton / Single / (140-150)"}},
		{RawRow: RawRow{OrderNumber: "1002", CountryCode: "US", Description: "Eczema Mitten - Tencel / Bundle of 2 / L (170-180)"}},
	}

	classified := ClassifyAll(merged)
	require.Len(t, classified, 2)

	assert.Equal(t, BucketDomestic, classified[0].Bucket)
	assert.Equal(t, SizeXS, classified[0].Product.SizeClass)
	assert.Equal(t, MaterialCotton, classified[0].Product.Material)

	assert.Equal(t, BucketUSRestricted, classified[1].Bucket)
	assert.Equal(t, SizeL, classified[1].Product.SizeClass)
	assert.Equal(t, MaterialTencel, classified[1].Product.Material)
	assert.True(t, classified[1].Product.IsBundle)
}
