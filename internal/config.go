package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/docbrief/internal/apperr"
	"github.com/starford/docbrief/internal/extract"
	"github.com/starford/docbrief/internal/scan"
	"github.com/starford/docbrief/internal/state"
	"github.com/starford/docbrief/internal/summarize"
)

// Config represents the project configuration (docbrief.yaml).
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Project   ProjectConfig     `yaml:"project"`
	Scan      ScanConfig        `yaml:"scan"`
	Extract   ExtractConfig     `yaml:"extract"`
	Summarize SummarizeConfig   `yaml:"summarize"`
	State     StateConfig       `yaml:"state"`
	Render    RenderConfig      `yaml:"render"`
}

// Validate validates the configuration. Failures wrap apperr.ErrConfiguration.
func (c *Config) Validate() error {
	err := errors.Join(
		c.Project.Validate(),
		c.Scan.Validate(),
		c.Extract.Validate(),
		c.Summarize.Validate(),
		c.State.Validate(),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrConfiguration, err)
	}
	return nil
}

// ApplicationConfig holds process-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// ProjectConfig names the project and its directories.
type ProjectConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	InputDir    string `yaml:"input_dir"`
	Output      string `yaml:"output"`
	StateDir    string `yaml:"state_dir"`
}

// Validate validates the project configuration.
func (c *ProjectConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.InputDir, validation.Required),
		validation.Field(&c.Output, validation.Required),
		validation.Field(&c.StateDir, validation.Required),
	)
}

// ScanConfig selects which documents are in scope.
type ScanConfig struct {
	Include       []string `yaml:"include"`
	Exclude       []string `yaml:"exclude"`
	FilenameRegex []string `yaml:"filename_regex"`
	MaxFiles      int      `yaml:"max_files"`
	IgnoreFile    string   `yaml:"ignore_file"`
}

// Validate validates the scan configuration.
func (c *ScanConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Include, validation.Required),
		validation.Field(&c.FilenameRegex, validation.Each(validation.By(compiles))),
		validation.Field(&c.MaxFiles, validation.Required, validation.Min(1)),
	)
}

// Options converts the section into scanner options.
func (c *ScanConfig) Options(inputDir string) scan.Options {
	res := make([]*regexp.Regexp, 0, len(c.FilenameRegex))
	for _, r := range c.FilenameRegex {
		res = append(res, regexp.MustCompile(r))
	}
	return scan.Options{
		InputDir:      inputDir,
		Include:       c.Include,
		Exclude:       c.Exclude,
		FilenameRegex: res,
		MaxFiles:      c.MaxFiles,
		IgnoreFile:    c.IgnoreFile,
	}
}

// ExtractConfig bounds extraction.
type ExtractConfig struct {
	MaxCharsPerFile int `yaml:"max_chars_per_file"`
}

// Validate validates the extract configuration.
func (c *ExtractConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxCharsPerFile, validation.Required, validation.Min(1)),
	)
}

// SummarizeConfig tunes the heuristic summarizer.
type SummarizeConfig struct {
	BulletsMax    int      `yaml:"bullets_max"`
	Focus         []string `yaml:"focus"`
	KnownHeadings []string `yaml:"known_headings"`
	StopLabels    []string `yaml:"stop_labels"`
	StopContains  []string `yaml:"stop_contains"`
	HeadingMaxLen int      `yaml:"heading_max_len"`
	BulletMaxLen  int      `yaml:"bullet_max_len"`
	Punctuation   string   `yaml:"punctuation"`
}

// Validate validates the summarize configuration.
func (c *SummarizeConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BulletsMax, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.Focus, validation.Each(validation.Required)),
		validation.Field(&c.KnownHeadings, validation.Each(validation.Required)),
		validation.Field(&c.HeadingMaxLen, validation.Required, validation.Min(1)),
		validation.Field(&c.BulletMaxLen, validation.Required, validation.Min(10)),
		validation.Field(&c.Punctuation, validation.By(compiles)),
	)
}

// Options converts the section into summarizer options. It must only be
// called on a validated config.
func (c *SummarizeConfig) Options() summarize.Options {
	opts := summarize.DefaultOptions()
	opts.BulletsMax = c.BulletsMax
	opts.Focus = c.Focus
	opts.KnownHeadings = c.KnownHeadings
	opts.StopLabels = c.StopLabels
	opts.StopContains = c.StopContains
	opts.HeadingMaxLen = c.HeadingMaxLen
	opts.BulletMaxLen = c.BulletMaxLen
	opts.Punctuation = nil
	if c.Punctuation != "" {
		opts.Punctuation = regexp.MustCompile(c.Punctuation)
	}
	return opts
}

// StateConfig selects the manifest backend.
type StateConfig struct {
	Backend string `yaml:"backend"`
}

// Validate validates the state configuration.
func (c *StateConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = state.BackendJSON
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Backend, validation.In(state.BackendJSON, state.BackendSQLite)),
	)
}

// RenderConfig configures the report renderer.
type RenderConfig struct {
	// Template overrides the built-in AsciiDoc template when set.
	Template string `yaml:"template"`
}

func compiles(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, err := regexp.Compile(s); err != nil {
		return fmt.Errorf("invalid regular expression %q: %v", s, err)
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	sum := summarize.DefaultOptions()
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Project: ProjectConfig{
			Name:     "DocBrief",
			InputDir: "./docs",
			Output:   "./summary.adoc",
			StateDir: "./.docbrief",
		},
		Scan: ScanConfig{
			Include:    []string{"**/*.docx"},
			Exclude:    []string{"**/~$*"},
			MaxFiles:   scan.DefaultMaxFiles,
			IgnoreFile: ".docbriefignore",
		},
		Extract: ExtractConfig{
			MaxCharsPerFile: extract.DefaultMaxChars,
		},
		Summarize: SummarizeConfig{
			BulletsMax:    sum.BulletsMax,
			Focus:         []string{},
			KnownHeadings: sum.KnownHeadings,
			StopLabels:    sum.StopLabels,
			StopContains:  sum.StopContains,
			HeadingMaxLen: sum.HeadingMaxLen,
			BulletMaxLen:  sum.BulletMaxLen,
			Punctuation:   summarize.DefaultPunctuation,
		},
		State: StateConfig{
			Backend: state.BackendJSON,
		},
	}
}
