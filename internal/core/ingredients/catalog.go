package ingredients

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"receptomat/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

//go:embed data/sastojci.json
var defaultCatalog []byte

//go:embed data/translations.json
var defaultTranslations []byte

// 類別 id
const (
	CategoryMeat       = "meat"
	CategoryVegetables = "vegetables"
	CategoryDairy      = "dairy"
	CategoryGrains     = "grains"
	CategoryFruits     = "fruits"
	CategoryNuts       = "nuts"
	CategorySpices     = "spices"
	CategoryPantry     = "pantry"
	CategoryLegumes    = "legumes"
)

// Ingredient 目錄中的一項食材
type Ingredient struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	AvailableInSerbia bool   `json:"available_in_serbia"`
	SerbianName       string `json:"serbian_name"`
}

// DisplayName 有譯名時用譯名
func (i Ingredient) DisplayName() string {
	if i.SerbianName != "" {
		return i.SerbianName
	}
	return i.Name
}

// rawIngredient 資料檔中的格式
type rawIngredient struct {
	ID        string `json:"sastojakID"`
	Name      string `json:"sastojakNAME"`
	Category  string `json:"category"`
	Available bool   `json:"availableInSerbia"`
}

type catalogFile struct {
	Items []rawIngredient `json:"Sastojci"`
}

// Category 選擇主要食材時顯示的類別
type Category struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Icon        string   `json:"icon"`
	Description string   `json:"description,omitempty"`
	Examples    []string `json:"examples,omitempty"`
}

// Group 依類別分組的食材
type Group struct {
	Category
	Items []Ingredient `json:"items"`
}

// groupOrder 分組顯示順序；豆類與未知類別歸到 pantry
var groupOrder = []Category{
	{ID: CategoryMeat, Name: "Meso i proteini", Icon: "🥩"},
	{ID: CategoryVegetables, Name: "Povrće", Icon: "🥕"},
	{ID: CategoryDairy, Name: "Mlečni proizvodi", Icon: "🧀"},
	{ID: CategoryGrains, Name: "Žitarice i testenine", Icon: "🌾"},
	{ID: CategoryFruits, Name: "Voće", Icon: "🍎"},
	{ID: CategoryNuts, Name: "Orašasti plodovi", Icon: "🥜"},
	{ID: CategorySpices, Name: "Začini i biljke", Icon: "🧂"},
	{ID: CategoryPantry, Name: "Ostalo", Icon: "🥫"},
}

var mainCategories = []Category{
	{
		ID: CategoryMeat, Name: "Meso i proteini", Icon: "🥩",
		Description: "Piletina, junetina, svinjsko meso, riba i ostali proteini",
		Examples:    []string{"Piletina", "Junetina", "Jaja", "Riba", "Slanina"},
	},
	{
		ID: CategoryVegetables, Name: "Povrće", Icon: "🥕",
		Description: "Sveže povrće, korenje, listasto povrće i začinsko bilje",
		Examples:    []string{"Paradajz", "Krompir", "Luk", "Šargarepa", "Paprika"},
	},
	{
		ID: CategoryGrains, Name: "Žitarice i testenine", Icon: "🌾",
		Description: "Pirinač, testenine, hleb i ostale žitarice",
		Examples:    []string{"Pirinač", "Špageti", "Hleb", "Brašno", "Ovas"},
	},
	{
		ID: CategoryDairy, Name: "Mlečni proizvodi", Icon: "🧀",
		Description: "Sir, mleko, jogurt, pavlaka i ostali mlečni proizvodi",
		Examples:    []string{"Sir", "Mleko", "Jogurt", "Maslac", "Pavlaka"},
	},
	{
		ID: CategoryFruits, Name: "Voće", Icon: "🍎",
		Description: "Sveže i sušeno voće za slatka i slana jela",
		Examples:    []string{"Jabuka", "Banana", "Limun", "Jagoda", "Pomorandža"},
	},
	{
		ID: CategorySpices, Name: "Začini i dodatci", Icon: "🧂",
		Description: "So, biber, začini, sosovi i ostali dodaci",
		Examples:    []string{"So", "Biber", "Bosiljak", "Origano", "Maslinovo ulje"},
	},
	{
		ID: CategoryPantry, Name: "Ostalo iz špajza", Icon: "🥫",
		Description: "Konzerve, sosovi, slatkiši i ostale namirnice",
		Examples:    []string{"Kečap", "Senf", "Med", "Sirće", "Čokolada"},
	},
}

// MainCategories 主要食材的類別清單（不含豆類與堅果）
func MainCategories() []Category {
	return slices.Clone(mainCategories)
}

// Catalog 在塞爾維亞買得到的食材，附塞爾維亞文名稱
type Catalog struct {
	items []Ingredient
}

// Load 讀取食材目錄；path 為空時使用內建資料
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read ingredient catalog: %w", err)
		}
		data = b
	}

	var file catalogFile
	if err := common.ParseJSONBytes(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse ingredient catalog: %w", err)
	}

	var pairs [][2]string
	if err := common.ParseJSONBytes(defaultTranslations, &pairs); err != nil {
		return nil, fmt.Errorf("failed to parse ingredient translations: %w", err)
	}

	items := make([]Ingredient, len(file.Items))
	for i, r := range file.Items {
		items[i] = Ingredient{
			ID:                r.ID,
			Name:              r.Name,
			Category:          r.Category,
			AvailableInSerbia: r.Available,
		}
	}

	c := NewCatalog(items, NewTranslator(pairs))
	common.LogInfo("食材目錄已載入",
		zap.String("source", orDefault(path, "embedded")),
		zap.Int("total", len(items)),
		zap.Int("available", len(c.items)),
	)
	return c, nil
}

// NewCatalog 過濾掉買不到的食材並補上塞爾維亞文名稱
func NewCatalog(items []Ingredient, t *Translator) *Catalog {
	local := make([]Ingredient, 0, len(items))
	for _, it := range items {
		if !it.AvailableInSerbia {
			continue
		}
		if t != nil {
			it.SerbianName = t.Translate(it.Name)
		}
		local = append(local, it)
	}
	return &Catalog{items: local}
}

// Len 可用食材數量
func (c *Catalog) Len() int {
	return len(c.items)
}

// All 全部可用食材，依目錄順序
func (c *Catalog) All() []Ingredient {
	return slices.Clone(c.items)
}

// Search 英文或塞爾維亞文名稱包含 query（不分大小寫）；空白 query 回傳全部
func (c *Catalog) Search(query string) []Ingredient {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return c.All()
	}
	out := []Ingredient{}
	for _, it := range c.items {
		if strings.Contains(strings.ToLower(it.Name), term) ||
			strings.Contains(strings.ToLower(it.SerbianName), term) {
			out = append(out, it)
		}
	}
	return out
}

// ByCategory 指定類別的食材
func (c *Catalog) ByCategory(category string) []Ingredient {
	out := []Ingredient{}
	for _, it := range c.items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

// Query 依類別過濾後再搜尋，兩者皆可為空
func (c *Catalog) Query(query, category string) []Ingredient {
	if category == "" {
		return c.Search(query)
	}
	filtered := &Catalog{items: c.ByCategory(category)}
	return filtered.Search(query)
}

// Grouped 依固定順序分組，組內依塞爾維亞文名稱排序
func (c *Catalog) Grouped() []Group {
	index := make(map[string]int, len(groupOrder))
	groups := make([]Group, len(groupOrder))
	for i, cat := range groupOrder {
		index[cat.ID] = i
		groups[i] = Group{Category: cat, Items: []Ingredient{}}
	}
	pantry := index[CategoryPantry]

	for _, it := range c.items {
		i, ok := index[it.Category]
		if !ok {
			i = pantry
		}
		groups[i].Items = append(groups[i].Items, it)
	}

	for i := range groups {
		sortByDisplayName(groups[i].Items)
	}
	return groups
}

// sortByDisplayName 以塞爾維亞拉丁字母排序（č、ć、š、ž 排在正確位置）
func sortByDisplayName(items []Ingredient) {
	col := collate.New(language.MustParse("sr-Latn"), collate.IgnoreCase)
	slices.SortStableFunc(items, func(a, b Ingredient) int {
		return col.CompareString(a.DisplayName(), b.DisplayName())
	})
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
