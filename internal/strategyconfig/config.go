package strategyconfig

// Config는 스크리닝 전략의 전체 설정
// ⭐ SSOT: config/strategy/*.yaml
type Config struct {
	Meta           Meta           `yaml:"meta" json:"meta"`
	Universe       Universe       `yaml:"universe" json:"universe"`
	Normalization  Normalization  `yaml:"normalization" json:"normalization"`
	Scoring        Scoring        `yaml:"scoring" json:"scoring"`
	Valuation      Valuation      `yaml:"valuation" json:"valuation"`
	Classification Classification `yaml:"classification" json:"classification"`
	Ranking        Ranking        `yaml:"ranking" json:"ranking"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID  string `yaml:"strategy_id" json:"strategy_id" validate:"required"`
	Version     string `yaml:"version" json:"version" validate:"required"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Universe lists the tickers for the static provider.
// Sectors maps ticker → provider sector name, translated by sector_names.
type Universe struct {
	Tickers []string          `yaml:"tickers" json:"tickers" validate:"dive,required"`
	Sectors map[string]string `yaml:"sectors,omitempty" json:"sectors,omitempty" validate:"dive,keys,required,endkeys,required"`
}

// Normalization S1: missing-field policy and sector naming
type Normalization struct {
	DefaultSector string            `yaml:"default_sector" json:"default_sector" validate:"required"`
	Policies      Policies          `yaml:"policies" json:"policies"`
	SectorNames   map[string]string `yaml:"sector_names" json:"sector_names"`
}

// Policies per numeric field: "default" (0) or "exclude"
type Policies struct {
	PriceEarnings  string `yaml:"price_earnings" json:"price_earnings" validate:"oneof=default exclude"`
	PriceToBook    string `yaml:"price_to_book" json:"price_to_book" validate:"oneof=default exclude"`
	ReturnOnEquity string `yaml:"return_on_equity" json:"return_on_equity" validate:"oneof=default exclude"`
	DividendYield  string `yaml:"dividend_yield" json:"dividend_yield" validate:"oneof=default exclude"`
	DebtToEquity   string `yaml:"debt_to_equity" json:"debt_to_equity" validate:"oneof=default exclude"`
	MarketCap      string `yaml:"market_cap" json:"market_cap" validate:"oneof=default exclude"`
	CurrentPrice   string `yaml:"current_price" json:"current_price" validate:"oneof=default exclude"`
}

// Scoring S2: weighted predicates, weights sum to 100
type Scoring struct {
	Rules []Rule `yaml:"rules" json:"rules" validate:"required,min=1,dive"`
}

// Rule lower < value < upper (exclusive, nil = open)
type Rule struct {
	Name   string   `yaml:"name" json:"name" validate:"required"`
	Field  string   `yaml:"field" json:"field" validate:"required"`
	Lower  *float64 `yaml:"lower,omitempty" json:"lower,omitempty"`
	Upper  *float64 `yaml:"upper,omitempty" json:"upper,omitempty"`
	Weight int      `yaml:"weight" json:"weight" validate:"gte=0,lte=100"`
}

// Valuation S3: fair price heuristic
type Valuation struct {
	Mode           string  `yaml:"mode" json:"mode" validate:"oneof=score fair_value"`
	TargetMultiple float64 `yaml:"target_multiple" json:"target_multiple" validate:"gt=0"`
}

// Classification S4: market-cap tiers
type Classification struct {
	Thresholds Thresholds `yaml:"thresholds" json:"thresholds"`
	Labels     TierLabels `yaml:"labels" json:"labels"`
}

type Thresholds struct {
	Large float64 `yaml:"large" json:"large" validate:"gt=0"`
	Mid   float64 `yaml:"mid" json:"mid" validate:"gt=0"`
}

type TierLabels struct {
	Large string `yaml:"large" json:"large" validate:"required"`
	Mid   string `yaml:"mid" json:"mid" validate:"required"`
	Small string `yaml:"small" json:"small" validate:"required"`
}

// Ranking: sort key, default filter and output size
type Ranking struct {
	Sort   string        `yaml:"sort,omitempty" json:"sort,omitempty" validate:"omitempty,oneof=score discount"`
	Limit  int           `yaml:"limit" json:"limit" validate:"gte=0"`
	Filter RankingFilter `yaml:"filter" json:"filter"`
}

// RankingFilter 미설정 필드는 적용하지 않음
type RankingFilter struct {
	Sector      *string  `yaml:"sector,omitempty" json:"sector,omitempty"`
	Tier        string   `yaml:"tier,omitempty" json:"tier,omitempty" validate:"omitempty,oneof=large mid small Large Mid Small"`
	MinScore    *int     `yaml:"min_score,omitempty" json:"min_score,omitempty" validate:"omitempty,gte=0,lte=100"`
	MinDiscount *float64 `yaml:"min_discount,omitempty" json:"min_discount,omitempty"`
}

// IBOVTickers is the built-in universe (30 liquid IBOVESPA names)
var IBOVTickers = []string{
	"PETR4", "VALE3", "ITUB4", "BBDC4", "BBAS3",
	"WEGE3", "MGLU3", "SUZB3", "RENT3", "PRIO3",
	"GGBR4", "CSNA3", "JBSS3", "RADL3", "EQTL3",
	"RAIL3", "LREN3", "ELET3", "EMBR3", "HAPV3",
	"VIVT3", "TIMS3", "BRFS3", "AZUL4", "CMIG4",
	"CPFE3", "UGPA3", "MULT3", "CYRE3", "HYPE3",
}

// IBOVSectors classifies the built-in universe with Yahoo sector names
var IBOVSectors = map[string]string{
	"PETR4": "Energy", "PRIO3": "Energy", "UGPA3": "Energy",
	"VALE3": "Basic Materials", "SUZB3": "Basic Materials", "GGBR4": "Basic Materials", "CSNA3": "Basic Materials",
	"ITUB4": "Financial Services", "BBDC4": "Financial Services", "BBAS3": "Financial Services",
	"WEGE3": "Industrials", "RENT3": "Industrials", "RAIL3": "Industrials", "EMBR3": "Industrials", "AZUL4": "Industrials",
	"MGLU3": "Consumer Cyclical", "LREN3": "Consumer Cyclical", "CYRE3": "Consumer Cyclical",
	"JBSS3": "Consumer Defensive", "BRFS3": "Consumer Defensive",
	"RADL3": "Healthcare", "HAPV3": "Healthcare", "HYPE3": "Healthcare",
	"EQTL3": "Utilities", "ELET3": "Utilities", "CMIG4": "Utilities", "CPFE3": "Utilities",
	"VIVT3": "Communication Services", "TIMS3": "Communication Services",
	"MULT3": "Real Estate",
}

func bound(v float64) *float64 { return &v }

// Default returns the canonical value strategy used when no file is given
func Default() *Config {
	tickers := make([]string, len(IBOVTickers))
	copy(tickers, IBOVTickers)
	sectors := make(map[string]string, len(IBOVSectors))
	for t, s := range IBOVSectors {
		sectors[t] = s
	}

	return &Config{
		Meta: Meta{
			StrategyID:  "value_ibov",
			Version:     "1.0",
			Description: "Value screen over the IBOVESPA universe",
		},
		Universe: Universe{Tickers: tickers, Sectors: sectors},
		Normalization: Normalization{
			DefaultSector: "Not informed",
			Policies: Policies{
				PriceEarnings:  "default",
				PriceToBook:    "default",
				ReturnOnEquity: "default",
				DividendYield:  "default",
				DebtToEquity:   "default",
				MarketCap:      "exclude",
				CurrentPrice:   "exclude",
			},
			SectorNames: map[string]string{
				"Basic Materials":        "Materiais Básicos",
				"Communication Services": "Comunicações",
				"Consumer Cyclical":      "Consumo Cíclico",
				"Consumer Defensive":     "Consumo Não Cíclico",
				"Energy":                 "Petróleo, Gás e Biocombustíveis",
				"Financial Services":     "Financeiro",
				"Healthcare":             "Saúde",
				"Industrials":            "Bens Industriais",
				"Real Estate":            "Imobiliário",
				"Technology":             "Tecnologia da Informação",
				"Utilities":              "Utilidade Pública",
			},
		},
		Scoring: Scoring{
			Rules: []Rule{
				{Name: "pe", Field: "price_earnings", Lower: bound(0), Upper: bound(10), Weight: 25},
				{Name: "pb", Field: "price_to_book", Lower: bound(0), Upper: bound(1.5), Weight: 25},
				{Name: "roe", Field: "return_on_equity", Lower: bound(0.15), Weight: 20},
				{Name: "dividend_yield", Field: "dividend_yield", Lower: bound(0.05), Weight: 15},
				{Name: "market_cap", Field: "market_cap", Lower: bound(10_000_000_000), Weight: 15},
				{Name: "debt_to_equity", Field: "debt_to_equity", Lower: bound(0), Upper: bound(150), Weight: 0},
			},
		},
		Valuation: Valuation{
			Mode:           "score",
			TargetMultiple: 15,
		},
		Classification: Classification{
			Thresholds: Thresholds{Large: 50_000_000_000, Mid: 10_000_000_000},
			Labels:     TierLabels{Large: "Large Cap", Mid: "Mid Cap", Small: "Small Cap"},
		},
		Ranking: Ranking{
			Sort:  "score",
			Limit: 10,
		},
	}
}
