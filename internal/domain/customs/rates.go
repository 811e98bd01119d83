// Package customs maps product attributes and destination buckets to the
// declared value, weight, dimensions, and tariff code required on shipping
// manifests. Everything here is deterministic table lookup; the tables are
// the designated edit points when carrier rates or the tariff schedule
// change.
package customs

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mittenshop/fulfillment/internal/domain/order"
)

// Currency codes used on manifests.
const (
	CurrencySGD = "SGD"
	CurrencyUSD = "USD"
)

// Fixed, bucket-independent package metadata.
const (
	WidthCm       = 20
	DepthCm       = 10
	ServiceCode   = "IRAIRA" // carrier air-mail service
	ArticleType   = "AS"     // small packet
	SizeCode      = "NS"     // non-standard
	CategoryCode  = "M"      // merchandise
	OriginCountry = "SG"
)

// Tariff codes by material: 6-digit HS codes for standard international
// manifests, 10-digit HTS codes for the US manifest.
const (
	tariffCottonHS6   = "611692"
	tariffTencelHS6   = "611699"
	tariffCottonHTS10 = "6116928800"
	tariffTencelHTS10 = "6116999530"
)

// ErrNoRate is returned for bucket/material combinations that have no
// manifest rate. Domestic and excluded orders never reach the resolver.
var ErrNoRate = errors.New("customs: no rate for destination bucket")

// Rate is the resolved pricing and customs data for one manifest line.
type Rate struct {
	DeclaredValue decimal.Decimal
	Currency      string
	WeightGrams   int
	HeightCm      int
	TariffCode    string
}

type rateKey struct {
	bucket   order.DestinationBucket
	material order.Material
	bundle   bool
}

// rateTable is the authoritative (bucket, material, bundle) rate table.
// International declared values are flat per piece count; US values are
// material-specific.
var rateTable = map[rateKey]Rate{
	{order.BucketInternationalStandard, order.MaterialCotton, false}: {decimal.NewFromInt(20), CurrencySGD, 250, 2, tariffCottonHS6},
	{order.BucketInternationalStandard, order.MaterialTencel, false}: {decimal.NewFromInt(20), CurrencySGD, 250, 2, tariffTencelHS6},
	{order.BucketInternationalStandard, order.MaterialCotton, true}:  {decimal.NewFromInt(40), CurrencySGD, 500, 4, tariffCottonHS6},
	{order.BucketInternationalStandard, order.MaterialTencel, true}:  {decimal.NewFromInt(40), CurrencySGD, 500, 4, tariffTencelHS6},
	{order.BucketUSRestricted, order.MaterialCotton, false}:          {decimal.NewFromInt(75), CurrencyUSD, 250, 2, tariffCottonHTS10},
	{order.BucketUSRestricted, order.MaterialTencel, false}:          {decimal.NewFromInt(150), CurrencyUSD, 250, 2, tariffTencelHTS10},
	{order.BucketUSRestricted, order.MaterialCotton, true}:           {decimal.NewFromInt(120), CurrencyUSD, 500, 4, tariffCottonHTS10},
	{order.BucketUSRestricted, order.MaterialTencel, true}:           {decimal.NewFromInt(240), CurrencyUSD, 500, 4, tariffTencelHTS10},
}

// Resolve looks up the manifest rate for a material, bundle flag, and
// destination bucket. Callers must not invoke it for Domestic or Excluded
// buckets.
func Resolve(material order.Material, bundle bool, bucket order.DestinationBucket) (Rate, error) {
	rate, ok := rateTable[rateKey{bucket, material, bundle}]
	if !ok {
		return Rate{}, fmt.Errorf("%w: %s/%s bundle=%t", ErrNoRate, bucket, material, bundle)
	}
	return rate, nil
}
