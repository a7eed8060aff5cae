package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPriceBucketValid(t *testing.T) {
	for _, b := range PriceBuckets {
		assert.True(t, b.Valid(), "bucket %s", b)
	}
	assert.False(t, PriceBucket("").Valid())
	assert.False(t, PriceBucket("under30").Valid())
	assert.False(t, PriceBucket("100plus").Valid())
}

func TestPriceBucketBounds(t *testing.T) {
	min, max := Bucket30To50.Bounds()
	assert.True(t, min.Equal(decimal.NewFromInt(30)))
	if assert.NotNil(t, max) {
		assert.True(t, max.Equal(decimal.NewFromInt(50)))
	}

	min, max = BucketOver100.Bounds()
	assert.True(t, min.Equal(decimal.NewFromInt(100)))
	assert.Nil(t, max)
}
