package service

import (
	"testing"

	"github.com/lapatisseriex/La-Patisserie-sub001/internal/model"
	"github.com/stretchr/testify/assert"
)

func testHostels() []*model.Hostel {
	return []*model.Hostel{
		{ID: 1, Name: "PSG", Address: "Peelamedu, Coimbatore"},
		{ID: 2, Name: "KPR", Address: "avinashi road"},
		{ID: 3, Name: "Sri Krishna PG", Address: "Hope College"},
	}
}

func TestMatchHostel_ExactName(t *testing.T) {
	h := MatchHostel("PSG", "somewhere else entirely", testHostels(), nil)
	assert.NotNil(t, h)
	assert.Equal(t, int64(1), h.ID)
}

func TestMatchHostel_ExactNameCaseAndWhitespace(t *testing.T) {
	h := MatchHostel("  psg  ", "", testHostels(), nil)
	assert.NotNil(t, h)
	assert.Equal(t, int64(1), h.ID)
}

func TestMatchHostel_ExactAddress(t *testing.T) {
	h := MatchHostel("", "Peelamedu, Coimbatore", testHostels(), nil)
	assert.NotNil(t, h)
	assert.Equal(t, int64(1), h.ID)
}

func TestMatchHostel_NameSubstringOfDeliveryLocation(t *testing.T) {
	h := MatchHostel("", "opposite KPR main gate", testHostels(), nil)
	assert.NotNil(t, h)
	assert.Equal(t, int64(2), h.ID)
}

func TestMatchHostel_AddressSubstringOfDeliveryLocation(t *testing.T) {
	// 宿舍名没出现 但地址片段出现在用户输入里
	h := MatchHostel("", "avinashi road, tirupur", testHostels(), nil)
	assert.NotNil(t, h)
	assert.Equal(t, int64(2), h.ID)
}

func TestMatchHostel_ReverseNamePartial(t *testing.T) {
	// 用户只输入了宿舍名的一部分
	h := MatchHostel("Krishna", "no address overlap here", testHostels(), nil)
	assert.NotNil(t, h)
	assert.Equal(t, int64(3), h.ID)
}

func TestMatchHostel_ReverseAddressPartial(t *testing.T) {
	h := MatchHostel("", "hope college", testHostels(), nil)
	assert.NotNil(t, h)
	assert.Equal(t, int64(3), h.ID)
}

func TestMatchHostel_PrecedenceNameBeatsAddress(t *testing.T) {
	// 名字精确命中优先于地址匹配
	hostels := []*model.Hostel{
		{ID: 1, Name: "Alpha", Address: "beta street"},
		{ID: 2, Name: "Beta", Address: "alpha street"},
	}
	h := MatchHostel("beta", "alpha street", hostels, nil)
	assert.NotNil(t, h)
	assert.Equal(t, int64(2), h.ID)
}

func TestMatchHostel_MappingFallback(t *testing.T) {
	mappings := []*model.DeliveryLocationMapping{
		{ID: 10, DeliveryLocation: "Ganapathipalayam, Tirupur - 641605", HostelID: 2, HostelName: "KPR"},
	}
	h := MatchHostel("", "Ganapathipalayam, Tirupur - 641605", testHostels(), mappings)
	assert.NotNil(t, h)
	assert.Equal(t, int64(2), h.ID)
}

func TestMatchHostel_Unresolved(t *testing.T) {
	h := MatchHostel("", "Ganapathipalayam, Tirupur - 641605", testHostels(), nil)
	assert.Nil(t, h)
}

func TestMatchHostel_EmptyInputs(t *testing.T) {
	h := MatchHostel("", "", testHostels(), nil)
	assert.Nil(t, h)
}

// 规格里的端到端场景：avinashi 命中 KPR 的地址
// Ganapathipalayam 在加映射前保持未解析
func TestMatchHostel_AvinashiScenario(t *testing.T) {
	hostels := []*model.Hostel{
		{ID: 1, Name: "PSG", Address: "Peelamedu"},
		{ID: 2, Name: "KPR", Address: "avinashi"},
	}

	h := MatchHostel("", "avinashi, tirupur", hostels, nil)
	assert.NotNil(t, h)
	assert.Equal(t, "KPR", h.Name)

	unresolved := MatchHostel("", "Ganapathipalayam 4th street Tirupur - 641605", hostels, nil)
	assert.Nil(t, unresolved)

	// 管理员补了手工映射之后才解析
	mappings := []*model.DeliveryLocationMapping{
		{DeliveryLocation: "Ganapathipalayam 4th street Tirupur - 641605", HostelID: 2, HostelName: "KPR", MappingType: model.MappingTypeManual},
	}
	resolved := MatchHostel("", "Ganapathipalayam 4th street Tirupur - 641605", hostels, mappings)
	assert.NotNil(t, resolved)
	assert.Equal(t, int64(2), resolved.ID)
}
