package model

import "time"

// Config holds all tunables for a weave run. Values come from flags, the
// config file and STORYWEAVER_* environment variables via viper; every field
// has a working default so a zero config file is valid.
type Config struct {
	Similarity  SimilarityConfig  `mapstructure:"similarity" yaml:"similarity"`
	Extract     ExtractConfig     `mapstructure:"extract" yaml:"extract"`
	Filters     FilterConfig      `mapstructure:"filters" yaml:"filters"`
	Keywords    KeywordConfig     `mapstructure:"keywords" yaml:"keywords"`
	LLM         LLMConfig         `mapstructure:"llm" yaml:"llm"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Output      OutputConfig      `mapstructure:"output" yaml:"output"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency" yaml:"concurrency"`
}

// SimilarityConfig controls the fuzzy merge phase.
type SimilarityConfig struct {
	// Threshold is the minimum similarity ratio (0-100) for two names to be
	// considered the same entity. Clamped to [50, 100] at use sites.
	Threshold int `mapstructure:"threshold" yaml:"threshold"`
}

// ExtractConfig controls the recognition phase.
type ExtractConfig struct {
	MinNameLength int `mapstructure:"min_name_length" yaml:"min_name_length"`
	// BatchThreshold is the record count above which a document is analyzed
	// in batches instead of record by record.
	BatchThreshold int `mapstructure:"batch_threshold" yaml:"batch_threshold"`
	BatchSize      int `mapstructure:"batch_size" yaml:"batch_size"`
}

// FilterConfig holds the word lists used to reject noise entities.
type FilterConfig struct {
	StopWords        []string `mapstructure:"stop_words" yaml:"stop_words"`
	BodyTerms        []string `mapstructure:"body_terms" yaml:"body_terms"`
	GenericItems     []string `mapstructure:"generic_items" yaml:"generic_items"`
	GenericLocations []string `mapstructure:"generic_locations" yaml:"generic_locations"`
}

// KeywordConfig maps category tags to trigger keywords for items and
// locations.
type KeywordConfig struct {
	Items     map[string][]string `mapstructure:"items" yaml:"items"`
	Locations map[string][]string `mapstructure:"locations" yaml:"locations"`
}

// LLMConfig configures the optional description enrichment step. An empty
// Provider disables enrichment entirely.
type LLMConfig struct {
	Provider   string        `mapstructure:"provider" yaml:"provider"`
	Model      string        `mapstructure:"model" yaml:"model"`
	APIKey     string        `mapstructure:"api_key" yaml:"api_key"`
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	MaxTokens  int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	HTTPProxy  string        `mapstructure:"http_proxy" yaml:"http_proxy"`
	HTTPSProxy string        `mapstructure:"https_proxy" yaml:"https_proxy"`
	NoProxy    string        `mapstructure:"no_proxy" yaml:"no_proxy"`
}

// CacheConfig configures the layered enrichment cache.
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Dir       string        `mapstructure:"dir" yaml:"dir"`
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Dir     string `mapstructure:"dir" yaml:"dir"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose"`
	// Cards additionally writes character card JSON files.
	Cards bool `mapstructure:"cards" yaml:"cards"`
}

// ConcurrencyConfig bounds the enrichment worker pool.
type ConcurrencyConfig struct {
	DescribeWorkers   int     `mapstructure:"describe_workers" yaml:"describe_workers"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
}

// DefaultConfig returns the built-in configuration. The word lists cover
// German and English transcripts; config files may replace them wholesale.
func DefaultConfig() Config {
	return Config{
		Similarity: SimilarityConfig{Threshold: 80},
		Extract: ExtractConfig{
			MinNameLength:  3,
			BatchThreshold: 1000,
			BatchSize:      500,
		},
		Filters: FilterConfig{
			StopWords:        defaultStopWords(),
			BodyTerms:        defaultBodyTerms(),
			GenericItems:     defaultGenericItems(),
			GenericLocations: defaultGenericLocations(),
		},
		Keywords: KeywordConfig{
			Items:     DefaultItemKeywords(),
			Locations: DefaultLocationKeywords(),
		},
		LLM: LLMConfig{
			Timeout:   60 * time.Second,
			MaxTokens: 300,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: time.Hour,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Output: OutputConfig{Dir: "output"},
		Concurrency: ConcurrencyConfig{
			DescribeWorkers:   4,
			RequestsPerSecond: 2,
			Burst:             1,
		},
	}
}

// DefaultItemKeywords returns the built-in item trigger keywords by category.
func DefaultItemKeywords() map[string][]string {
	return map[string][]string{
		"weapons":    {"schwert", "dolch", "klinge", "messer", "sword", "dagger", "blade", "knife"},
		"jewelry":    {"halskette", "armband", "ring", "necklace", "bracelet"},
		"tools":      {"schlüssel", "key"},
		"magic":      {"kristall", "amulett", "zauberstab", "crystal", "amulet", "wand"},
		"restraints": {"seil", "kette", "fessel", "handschellen", "manschetten", "rope", "chain", "shackle", "handcuffs", "cuffs"},
	}
}

// DefaultLocationKeywords returns the built-in location trigger keywords by
// category.
func DefaultLocationKeywords() map[string][]string {
	return map[string][]string{
		"buildings": {"schloss", "turm", "kerker", "verlies", "kammer", "castle", "tower", "cellar", "chamber"},
		"rooms":     {"dungeon", "spielzimmer", "studio", "playroom"},
	}
}

func defaultStopWords() []string {
	return []string{
		// German
		"der", "die", "das", "ein", "eine", "ich", "du", "er", "sie", "es", "wir", "ihr",
		"mein", "dein", "sein", "unser", "euer", "von", "zu", "mit", "auf", "in", "an",
		"und", "oder", "aber", "doch", "wenn", "dann", "dass", "weil", "als", "wie",
		"nicht", "kein", "keine", "sehr", "viel", "mehr", "wenig", "alle", "jeder",
		"mann", "frau", "herr", "dame", "person", "mensch", "körper",
		"oben", "unten", "vorne", "hinten", "links", "rechts", "mitte",
		"erste", "zweite", "dritte", "letzte", "nächste",
		// English
		"the", "and", "but", "with", "for", "not", "all", "very", "much", "more",
		"his", "her", "their", "our", "your", "this", "that", "then", "than",
		"man", "woman", "lady", "body",
		"above", "below", "front", "back", "left", "right", "middle",
		"first", "second", "third", "last", "next",
	}
}

func defaultBodyTerms() []string {
	return []string{
		// German
		"hand", "hände", "fuß", "füße", "arm", "arme", "bein", "beine",
		"kopf", "hals", "schulter", "brust", "rücken", "bauch", "hüfte",
		"handgelenk", "handgelenke", "knöchel", "fußgelenk", "fußgelenke",
		"finger", "zehen", "knie", "ellbogen", "position", "haltung",
		"knoten", "schlinge", "schlaufe", "wicklung", "bindung", "fesselung",
		"bewegung", "druck", "spannung", "gefühl", "berührung", "griff",
		// English
		"hands", "foot", "feet", "arms", "leg", "legs",
		"head", "neck", "shoulder", "chest", "hip",
		"wrist", "wrists", "ankle", "ankles",
		"fingers", "toes", "knee", "elbow", "posture",
		"knot", "loop", "binding",
		"movement", "pressure", "tension", "touch", "grip",
	}
}

func defaultGenericItems() []string {
	return []string{
		"objekt", "gegenstand", "ding", "sache", "material", "stück",
		"object", "item", "thing", "stuff", "piece",
	}
}

func defaultGenericLocations() []string {
	return []string{
		"hier", "dort", "überall", "nirgends", "irgendwo",
		"nähe", "ferne", "umgebung", "gegend", "bereich",
		"stelle", "platz", "ort", "lage",
		"here", "there", "everywhere", "nowhere", "somewhere",
		"vicinity", "distance", "surroundings", "area",
		"spot", "place", "location",
	}
}
