package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, Round2(66.666666))
	assert.Equal(t, 66.66, Round2(66.664))
	assert.Equal(t, 100.0, Round2(100))
	assert.Equal(t, 0.0, Round2(0))
}

func TestSuccessRate(t *testing.T) {
	// 2/3 -> 66.67
	assert.Equal(t, 66.67, SuccessRate(2, 3))
	assert.Equal(t, 100.0, SuccessRate(5, 5))
	assert.Equal(t, 50.0, SuccessRate(1, 2))
	assert.Equal(t, 0.0, SuccessRate(0, 10))
}

func TestSuccessRate_ZeroAttempts(t *testing.T) {
	// 零尝试不能除零 直接返回0
	assert.Equal(t, 0.0, SuccessRate(0, 0))
	assert.Equal(t, 0.0, SuccessRate(3, 0))
	assert.Equal(t, 0.0, SuccessRate(1, -1))
}
