package service

import (
	"testing"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"
	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func TestValidateLocation_NegativeCharge(t *testing.T) {
	err := validateLocation(&model.Location{City: "Tirupur", DeliveryCharge: -1})
	assert.ErrorIs(t, err, ErrNegativeCharge)
}

func TestValidateLocation_CoordsMustComeInPairs(t *testing.T) {
	// 只给一个坐标算非法
	err := validateLocation(&model.Location{City: "Tirupur", Latitude: f64(11.1)})
	assert.ErrorIs(t, err, ErrInvalidCoords)

	err = validateLocation(&model.Location{City: "Tirupur", Longitude: f64(77.3)})
	assert.ErrorIs(t, err, ErrInvalidCoords)
}

func TestValidateLocation_CoordRange(t *testing.T) {
	err := validateLocation(&model.Location{City: "Tirupur", Latitude: f64(99), Longitude: f64(77.3)})
	assert.ErrorIs(t, err, ErrInvalidCoords)
}

func TestValidateLocation_OK(t *testing.T) {
	assert.NoError(t, validateLocation(&model.Location{City: "Tirupur", DeliveryCharge: 20}))
	assert.NoError(t, validateLocation(&model.Location{
		City:           "Tirupur",
		DeliveryCharge: 20,
		Latitude:       f64(11.1085),
		Longitude:      f64(77.3411),
	}))
}
