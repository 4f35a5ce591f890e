package recipe

// 食譜摘要的預設值
const (
	DefaultDescription = "Ukusan recept sa dostupnim sastojcima."
	DefaultMethod      = "Kombinovano"
	DefaultTime        = "30 min"
	DefaultDifficulty  = "srednje"
)

// 請求未指定時使用的預設值
const (
	DefaultServings    = 2
	DefaultTargetCount = 5
	DefaultMoreCount   = 3
)

// 詳細食譜尚未解析到內容時的佔位文字
const (
	DetailTitleLoading = "Recept se učitava..."
	DetailTimeLoading  = "Učitava se..."
)

// Summary 清單串流解析出的食譜摘要
type Summary struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Method             string   `json:"method"`
	Time               string   `json:"time"`
	Difficulty         string   `json:"difficulty"`
	Servings           int      `json:"servings"`
	UsedCount          int      `json:"used_count"`
	MissingIngredients []string `json:"missing_ingredients"`
	ImageURL           string   `json:"image_url"`
	IsRecipe           bool     `json:"is_recipe"`
	IsFavorite         bool     `json:"is_favorite,omitempty"`

	// BlockIndex 來源區塊在整段輸出中的序號
	BlockIndex int `json:"-"`
}

// Detail 完整食譜
type Detail struct {
	Title       string   `json:"title"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	Time        string   `json:"time"`
	Tip         string   `json:"tip"`
}

// Focus 清單生成的偏好方向
type Focus string

const (
	FocusNone       Focus = ""
	FocusQuick      Focus = "quick"
	FocusEasy       Focus = "easy"
	FocusHealthy    Focus = "healthy"
	FocusComfort    Focus = "comfort"
	FocusVegetarian Focus = "vegetarian"
	FocusDessert    Focus = "dessert"
)

// Valid 是否為已知的方向
func (f Focus) Valid() bool {
	_, ok := focusLines[f]
	return ok || f == FocusNone
}

// ListRequest 清單生成請求
type ListRequest struct {
	Ingredients []string `json:"ingredients"`
	PromptExtra string   `json:"prompt_extra"`
	Focus       Focus    `json:"focus"`
	Servings    int      `json:"servings"`
	TargetCount int      `json:"target_count"`

	// NewSearch 開始前先清空滾動記憶
	NewSearch bool `json:"-"`
}

// DetailRequest 詳細食譜請求
type DetailRequest struct {
	RecipeName  string   `json:"recipe_name"`
	Ingredients []string `json:"ingredients"`
	Servings    int      `json:"servings"`
}

// RecipeHandler 每筆新解析出的食譜只會被呼叫一次
type RecipeHandler func(Summary)

// ChunkHandler 每收到一段輸出就以目前累積的全文呼叫
type ChunkHandler func(accumulated string)
