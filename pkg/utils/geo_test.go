package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCoords(t *testing.T) {
	assert.True(t, ValidCoords(11.1085, 77.3411)) // Tirupur
	assert.True(t, ValidCoords(0, 0))
	assert.True(t, ValidCoords(-90, 180))
	assert.True(t, ValidCoords(90, -180))

	assert.False(t, ValidCoords(90.1, 0))
	assert.False(t, ValidCoords(-90.1, 0))
	assert.False(t, ValidCoords(0, 180.1))
	assert.False(t, ValidCoords(0, -180.1))
}

func TestHaversineKm_SamePoint(t *testing.T) {
	assert.Equal(t, 0.0, HaversineKm(11.1085, 77.3411, 11.1085, 77.3411))
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// 蒂鲁普尔到哥印拜陀 直线约50公里
	d := HaversineKm(11.1085, 77.3411, 11.0168, 76.9558)
	assert.InDelta(t, 43.2, d, 2.0)

	// 赤道上经度差1度 约111.2公里
	d = HaversineKm(0, 0, 0, 1)
	assert.InDelta(t, 111.19, d, 0.1)
}
