// Package config layers defaults, .endeavor.yaml, ENDEAVOR_* environment
// variables and command flags into one Config value per invocation.
package config

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/xrsl/endeavor/pkg/errs"
)

// DefaultFile is the project config file, relative to the working directory.
const DefaultFile = ".endeavor.yaml"

// MaxSources is the largest candidate count that can still be labeled.
const MaxSources = 24

type Config struct {
	Agent           string        `mapstructure:"agent" yaml:"agent,omitempty"`
	ResearchAgent   string        `mapstructure:"research_agent" yaml:"research_agent,omitempty"`
	OutputDir       string        `mapstructure:"output_dir" yaml:"output_dir,omitempty"`
	PromptsDir      string        `mapstructure:"prompts_dir" yaml:"prompts_dir,omitempty"`
	Sources         int           `mapstructure:"sources" yaml:"sources,omitempty"`
	ResearchRounds  int           `mapstructure:"research_rounds" yaml:"research_rounds,omitempty"`
	LinkTimeout     time.Duration `mapstructure:"link_timeout" yaml:"link_timeout,omitempty"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout" yaml:"upstream_timeout,omitempty"`
	Browser         Browser       `mapstructure:"browser" yaml:"browser,omitempty"`
	Fonts           Fonts         `mapstructure:"fonts" yaml:"fonts,omitempty"`
	Sections        []string      `mapstructure:"sections" yaml:"sections,omitempty"`
}

// Browser configures the page archiver.
type Browser struct {
	Bin               string        `mapstructure:"bin" yaml:"bin,omitempty"`
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout,omitempty"`
	Settle            time.Duration `mapstructure:"settle" yaml:"settle,omitempty"`
	Paper             string        `mapstructure:"paper" yaml:"paper,omitempty"`
}

// Fonts are the TrueType files used for the document.
type Fonts struct {
	Regular string `mapstructure:"regular" yaml:"regular,omitempty"`
	Bold    string `mapstructure:"bold" yaml:"bold,omitempty"`
	Italic  string `mapstructure:"italic" yaml:"italic,omitempty"`
}

// Validate rejects values no component can run with.
func (c *Config) Validate() error {
	var problems []string
	if c.Sources < 1 || c.Sources > MaxSources {
		problems = append(problems, fmt.Sprintf("sources must be 1..%d, got %d", MaxSources, c.Sources))
	}
	if c.ResearchRounds < 1 {
		problems = append(problems, fmt.Sprintf("research_rounds must be at least 1, got %d", c.ResearchRounds))
	}
	if c.LinkTimeout <= 0 {
		problems = append(problems, "link_timeout must be positive")
	}
	if c.UpstreamTimeout <= 0 {
		problems = append(problems, "upstream_timeout must be positive")
	}
	if c.Browser.NavigationTimeout <= 0 {
		problems = append(problems, "browser.navigation_timeout must be positive")
	}
	if c.Browser.Settle < 0 {
		problems = append(problems, "browser.settle must not be negative")
	}
	switch strings.ToLower(c.Browser.Paper) {
	case "a4", "letter", "legal":
	default:
		problems = append(problems, fmt.Sprintf("browser.paper must be A4, Letter or Legal, got %q", c.Browser.Paper))
	}
	for i, s := range c.Sections {
		if strings.TrimSpace(s) == "" {
			problems = append(problems, fmt.Sprintf("sections[%d] is empty", i))
		}
	}
	if len(problems) > 0 {
		return errs.Config("config", fmt.Errorf("%s", strings.Join(problems, "; ")))
	}
	return nil
}

// Kind is the value type of a key.
type Kind int

const (
	String Kind = iota
	Int
	Bool
	Duration
	List
)

// Key describes one settable key.
type Key struct {
	Name    string
	Kind    Kind
	Default any
	Usage   string
}

// Keys lists every key in display order. Defaults for agent and
// research_agent are resolved by the caller, since they depend on what is
// installed.
var Keys = []Key{
	{"agent", String, "", "completion agent for topics and sections"},
	{"research_agent", String, "", "search-grounded agent for source research"},
	{"output_dir", String, ".", "root folder for applicant output"},
	{"prompts_dir", String, ".endeavor/prompts", "folder of prompt overrides"},
	{"sources", Int, 5, "candidate sources requested per round"},
	{"research_rounds", Int, 1, "research calls allowed to reach the source count"},
	{"link_timeout", Duration, 10 * time.Second, "timeout of one link check"},
	{"upstream_timeout", Duration, 5 * time.Minute, "timeout of one completion call"},
	{"browser.bin", String, "", "Chrome/Chromium binary; empty to auto-detect"},
	{"browser.headless", Bool, true, "run the browser headless"},
	{"browser.navigation_timeout", Duration, 30 * time.Second, "page navigation timeout"},
	{"browser.settle", Duration, 10 * time.Second, "wait for late content after load"},
	{"browser.paper", String, "A4", "archive paper size (A4, Letter, Legal)"},
	{"fonts.regular", String, "", "regular TrueType font; empty to auto-detect DejaVu Sans"},
	{"fonts.bold", String, "", "bold TrueType font for headings"},
	{"fonts.italic", String, "", "italic TrueType font for the topic line"},
	{"sections", List, nil, "comma-separated section titles"},
}

// LookupKey finds a key by name.
func LookupKey(name string) (Key, bool) {
	for _, k := range Keys {
		if k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

func keyNames() string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return strings.Join(names, ", ")
}

// Store is one layered view of the configuration.
type Store struct {
	v    *viper.Viper
	path string
}

// New reads path (if it exists) over the defaults, with ENDEAVOR_*
// environment variables on top.
func New(path string) (*Store, error) {
	if path == "" {
		path = DefaultFile
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Environment variables
	v.SetEnvPrefix("ENDEAVOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, k := range Keys {
		if k.Default != nil {
			v.SetDefault(k.Name, k.Default)
		}
		_ = v.BindEnv(k.Name)
	}

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.Config("config.read", fmt.Errorf("%s: %w", path, err))
		}
	}
	return &Store{v: v, path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Override sets a value for this invocation only, above every other layer.
// Used for command flags.
func (s *Store) Override(key string, value any) {
	s.v.Set(key, value)
}

// Load decodes and validates the layered configuration.
func (s *Store) Load() (*Config, error) {
	var cfg Config
	if err := s.v.Unmarshal(&cfg); err != nil {
		return nil, errs.Config("config.load", fmt.Errorf("failed to unmarshal config: %w", err))
	}
	for i, sec := range cfg.Sections {
		cfg.Sections[i] = strings.TrimSpace(sec)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) Get(key string) (string, error) {
	k, ok := LookupKey(key)
	if !ok {
		return "", errs.Config("config.get", fmt.Errorf("unknown config key: %s (valid: %s)", key, keyNames()))
	}
	return format(k, s.v.Get(key)), nil
}

// All returns every key with its effective value.
func (s *Store) All() map[string]string {
	out := make(map[string]string, len(Keys))
	for _, k := range Keys {
		out[k.Name] = format(k, s.v.Get(k.Name))
	}
	return out
}

// Set validates value for key and writes it to the config file. The file
// keeps only keys that were set explicitly.
func (s *Store) Set(key, value string) error {
	k, ok := LookupKey(key)
	if !ok {
		return errs.Config("config.set", fmt.Errorf("unknown config key: %s (valid: %s)", key, keyNames()))
	}
	parsed, err := parse(k, value)
	if err != nil {
		return errs.Config("config.set", fmt.Errorf("%s: %w", key, err))
	}

	file, err := s.readFile()
	if err != nil {
		return err
	}
	setNested(file, key, parsed)

	prev := s.v.Get(key)
	s.v.Set(key, parsed)
	if _, err := s.Load(); err != nil {
		s.v.Set(key, prev)
		return err
	}
	return s.writeFile(file)
}

func (s *Store) readFile() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, errs.Filesystem("config.read", err)
	}
	m := map[string]any{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errs.Config("config.read", fmt.Errorf("%s: %w", s.path, err))
	}
	return m, nil
}

func (s *Store) writeFile(m map[string]any) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return errs.Filesystem("config.write", err)
	}
	return nil
}

// SaveDefaults writes a config file with the given agents if none exists.
func (s *Store) SaveDefaults(agent, researchAgent string) (bool, error) {
	if _, err := os.Stat(s.path); err == nil {
		return false, nil
	}
	m := map[string]any{
		"agent":          agent,
		"research_agent": researchAgent,
		"sources":        5,
		"output_dir":     ".",
	}
	s.v.Set("agent", agent)
	s.v.Set("research_agent", researchAgent)
	return true, s.writeFile(m)
}

func setNested(m map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		child, ok := m[p].(map[string]any)
		if !ok {
			child = map[string]any{}
			m[p] = child
		}
		m = child
	}
	m[parts[len(parts)-1]] = value
}

func parse(k Key, value string) (any, error) {
	switch k.Kind {
	case Int:
		return strconv.Atoi(strings.TrimSpace(value))
	case Bool:
		return strconv.ParseBool(strings.TrimSpace(value))
	case Duration:
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	case List:
		return splitList(value), nil
	default:
		return value, nil
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func format(k Key, v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = fmt.Sprint(p)
		}
		return strings.Join(parts, ", ")
	case time.Duration:
		return val.String()
	default:
		if k.Kind == Duration {
			if d, err := time.ParseDuration(fmt.Sprint(val)); err == nil {
				return d.String()
			}
		}
		return fmt.Sprint(val)
	}
}

// SortedKeys returns All's keys in Keys order.
func SortedKeys(all map[string]string) []string {
	order := make(map[string]int, len(Keys))
	for i, k := range Keys {
		order[k.Name] = i
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return order[keys[i]] < order[keys[j]] })
	return keys
}
