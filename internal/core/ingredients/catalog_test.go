package ingredients

import (
	"os"
	"path/filepath"
	"testing"

	"receptomat/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(items []Ingredient) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.DisplayName()
	}
	return out
}

func testCatalog() *Catalog {
	t := NewTranslator([][2]string{
		{"Chicken", "Pile"},
		{"Chicken Breast", "Pileće grudi"},
		{"Chocolate", "Čokolada"},
		{"Melon", "Dinja"},
		{"Avocado", "Avokado"},
	})
	return NewCatalog([]Ingredient{
		{ID: "1", Name: "Chicken Breast", Category: CategoryMeat, AvailableInSerbia: true},
		{ID: "2", Name: "Melon", Category: CategoryFruits, AvailableInSerbia: true},
		{ID: "3", Name: "Chocolate", Category: "sweets", AvailableInSerbia: true},
		{ID: "4", Name: "Avocado", Category: CategoryFruits, AvailableInSerbia: true},
		{ID: "5", Name: "Kidney Beans", Category: CategoryLegumes, AvailableInSerbia: true},
		{ID: "6", Name: "Mirin", Category: CategoryPantry, AvailableInSerbia: false},
		{ID: "7", Name: "Smoked Chicken Wings", Category: CategoryMeat, AvailableInSerbia: true},
	}, t)
}

func TestTranslate(t *testing.T) {
	tr := NewTranslator([][2]string{
		{"Chicken", "Pile"},
		{"Chicken Breast", "Pileće grudi"},
		{"Onion", "Crni luk"},
		{"Onion", "Luk"},
	})

	assert.Equal(t, "Pileće grudi", tr.Translate("Chicken Breast"))
	// 部分比對取表中第一個包含的片段，不分大小寫
	assert.Equal(t, "Smoked Pile Wings", tr.Translate("Smoked chicken Wings"))
	assert.Equal(t, "Luk", tr.Translate("Onion"))
	assert.Equal(t, "Red Luk", tr.Translate("Red Onion"))
	assert.Equal(t, "Tahini", tr.Translate("Tahini"))
	assert.Equal(t, 3, tr.Len())
}

func TestCatalogFiltersUnavailable(t *testing.T) {
	c := testCatalog()

	assert.Equal(t, 6, c.Len())
	for _, it := range c.All() {
		assert.True(t, it.AvailableInSerbia, it.Name)
		assert.NotEqual(t, "Mirin", it.Name)
	}
	assert.Equal(t, "Pileće grudi", c.All()[0].SerbianName)
}

func TestCatalogSearch(t *testing.T) {
	c := testCatalog()

	assert.Equal(t, []string{"Pileće grudi", "Smoked Pile Wings"}, names(c.Search("pile")))
	assert.Equal(t, []string{"Pileće grudi"}, names(c.Search("BREAST")))
	assert.Len(t, c.Search("   "), c.Len())
	assert.Empty(t, c.Search("kavijar"))
	assert.NotNil(t, c.Search("kavijar"))
}

func TestCatalogByCategoryAndQuery(t *testing.T) {
	c := testCatalog()

	assert.Equal(t, []string{"Dinja", "Avokado"}, names(c.ByCategory(CategoryFruits)))
	assert.Empty(t, c.ByCategory("unknown"))
	assert.Equal(t, []string{"Avokado"}, names(c.Query("avo", CategoryFruits)))
	assert.Empty(t, c.Query("pile", CategoryFruits))
	assert.Len(t, c.Query("", ""), c.Len())
}

func TestCatalogGrouped(t *testing.T) {
	groups := testCatalog().Grouped()
	require.Len(t, groups, len(groupOrder))

	byID := map[string]Group{}
	for _, g := range groups {
		byID[g.ID] = g
		assert.NotNil(t, g.Items, g.ID)
	}
	assert.Equal(t, CategoryMeat, groups[0].ID)
	assert.Equal(t, "Ostalo", byID[CategoryPantry].Name)

	// 豆類與未知類別歸到 pantry
	assert.ElementsMatch(t, []string{"Čokolada", "Kidney Beans"}, names(byID[CategoryPantry].Items))
	// 依塞爾維亞文名稱排序而非位元組順序
	assert.Equal(t, []string{"Avokado", "Dinja"}, names(byID[CategoryFruits].Items))
	assert.Empty(t, byID[CategoryNuts].Items)
}

func TestSortByDisplayNameUsesSerbianCollation(t *testing.T) {
	items := []Ingredient{{Name: "Dinja"}, {Name: "Čokolada"}, {Name: "avokado"}}
	sortByDisplayName(items)
	assert.Equal(t, []string{"avokado", "Čokolada", "Dinja"}, names(items))
}

func TestMainCategories(t *testing.T) {
	cats := MainCategories()
	require.Len(t, cats, 7)
	for _, c := range cats {
		assert.NotEqual(t, CategoryLegumes, c.ID)
		assert.NotEqual(t, CategoryNuts, c.ID)
		assert.Len(t, c.Examples, 5)
	}

	// 回傳的是複本
	cats[0].Name = "x"
	assert.Equal(t, "Meso i proteini", MainCategories()[0].Name)
}

func TestLoadEmbedded(t *testing.T) {
	common.InitTestLogger()
	c, err := Load("")
	require.NoError(t, err)

	assert.Greater(t, c.Len(), 300)
	for _, it := range c.Search("Mirin") {
		assert.NotEqual(t, "Mirin", it.Name)
	}
	eggs := c.Search("jaje")
	require.NotEmpty(t, eggs)
	assert.Equal(t, "Egg", eggs[0].Name)
}

func TestLoadFromFile(t *testing.T) {
	common.InitTestLogger()
	path := filepath.Join(t.TempDir(), "sastojci.json")
	data := `{"Sastojci":[
		{"sastojakID":"1","sastojakNAME":"Garlic","category":"vegetables","availableInSerbia":true},
		{"sastojakID":"2","sastojakNAME":"Yuzu","category":"fruits","availableInSerbia":false}
	]}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "Beli luk", c.All()[0].SerbianName)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"Sastojci":`), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)
}
