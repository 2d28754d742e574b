// Package provenance provides field-level tracking of which source sheet
// supplied each master field and when.
package provenance

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/ugoscholars/scholardb/pkg/constants"
)

// ResourceType identifies the kind of record being tracked.
type ResourceType string

// ResourceTypeStudent is a master table row.
const ResourceTypeStudent ResourceType = "student"

// Provenance tracks the origin of a field value.
type Provenance struct {
	Source        string    `yaml:"source"`                   // Sheet that provided the value
	Field         string    `yaml:"field"`                    // Master field name
	Value         string    `yaml:"value"`                    // The value written
	PreviousValue string    `yaml:"previous_value,omitempty"` // Value before the run, if any
	Timestamp     time.Time `yaml:"timestamp"`                // Run timestamp
	Reason        string    `yaml:"reason,omitempty"`         // Why the value was written
}

// Reasons recorded by the consolidation engine.
const (
	ReasonCreated = "created"
	ReasonFilled  = "filled blank field"
	ReasonUnion   = "source union"
)

// Map tracks provenance for multiple resources.
type Map map[string][]Provenance // key is "resourceType:resourceID:field"

// Tracker manages provenance tracking during consolidation.
type Tracker interface {
	// Track records provenance for a field
	Track(resourceType ResourceType, resourceID string, field string, history Provenance)

	// FindByField retrieves provenance for a specific field
	FindByField(resourceType ResourceType, resourceID string, field string) []Provenance

	// FindByResource retrieves all provenance for a resource
	FindByResource(resourceType ResourceType, resourceID string) map[string][]Provenance

	// Map returns the complete provenance map
	Map() Map

	// Clear removes all provenance data
	Clear()
}

// tracker is the default implementation.
type tracker struct {
	provenance Map
	enabled    bool
}

// NewTracker creates a new provenance tracker.
func NewTracker(enabled bool) Tracker {
	return &tracker{
		provenance: make(Map),
		enabled:    enabled,
	}
}

// Track records provenance for a field.
func (p *tracker) Track(resourceType ResourceType, resourceID string, field string, history Provenance) {
	if !p.enabled {
		return
	}

	if history.Timestamp.IsZero() {
		history.Timestamp = time.Now()
	}
	if history.Field == "" {
		history.Field = field
	}

	key := makeKey(resourceType, resourceID, field)
	p.provenance[key] = append(p.provenance[key], history)
}

// FindByField retrieves provenance for a specific field.
func (p *tracker) FindByField(resourceType ResourceType, resourceID string, field string) []Provenance {
	if !p.enabled {
		return nil
	}
	return p.provenance[makeKey(resourceType, resourceID, field)]
}

// FindByResource retrieves all provenance for a resource.
func (p *tracker) FindByResource(resourceType ResourceType, resourceID string) map[string][]Provenance {
	if !p.enabled {
		return nil
	}

	result := make(map[string][]Provenance)
	prefix := fmt.Sprintf("%s:%s:", resourceType, resourceID)

	for key, info := range p.provenance {
		if field, found := strings.CutPrefix(key, prefix); found {
			result[field] = info
		}
	}

	return result
}

// Map returns a copy of the complete provenance map.
func (p *tracker) Map() Map {
	if !p.enabled {
		return nil
	}

	result := make(Map, len(p.provenance))
	for k, v := range p.provenance {
		result[k] = append([]Provenance{}, v...)
	}
	return result
}

// Clear removes all provenance data.
func (p *tracker) Clear() {
	p.provenance = make(Map)
}

func makeKey(resourceType ResourceType, resourceID string, field string) string {
	return fmt.Sprintf("%s:%s:%s", resourceType, resourceID, field)
}

// Report is a provenance map grouped by resource.
type Report struct {
	Resources map[string]ResourceProvenance // key is "resourceType:resourceID"
}

// ResourceProvenance contains provenance for a single resource.
type ResourceProvenance struct {
	Type   ResourceType
	ID     string
	Fields map[string]Field
}

// Field contains provenance history for a single field.
type Field struct {
	Current Provenance   // Most recent write
	History []Provenance // All writes, newest first
}

// GenerateReport creates a provenance report from a Map.
func GenerateReport(provenance Map) *Report {
	report := &Report{
		Resources: make(map[string]ResourceProvenance),
	}

	for key, infos := range provenance {
		parts := strings.SplitN(key, ":", 3)
		if len(parts) != 3 {
			continue
		}

		resourceKey := parts[0] + ":" + parts[1]
		resource, exists := report.Resources[resourceKey]
		if !exists {
			resource = ResourceProvenance{
				Type:   ResourceType(parts[0]),
				ID:     parts[1],
				Fields: make(map[string]Field),
			}
		}

		history := append([]Provenance{}, infos...)
		sort.SliceStable(history, func(i, j int) bool {
			return history[i].Timestamp.After(history[j].Timestamp)
		})

		field := Field{History: history}
		if len(history) > 0 {
			field.Current = history[0]
		}

		resource.Fields[parts[2]] = field
		report.Resources[resourceKey] = resource
	}

	return report
}

// String renders the report for humans.
func (r *Report) String() string {
	var sb strings.Builder

	sb.WriteString("Provenance Report\n")
	sb.WriteString("=================\n\n")

	resourceKeys := make([]string, 0, len(r.Resources))
	for key := range r.Resources {
		resourceKeys = append(resourceKeys, key)
	}
	sort.Strings(resourceKeys)

	for _, key := range resourceKeys {
		resource := r.Resources[key]
		fmt.Fprintf(&sb, "%s: %s\n", resource.Type, resource.ID)
		sb.WriteString(strings.Repeat("-", 40))
		sb.WriteString("\n")

		fieldKeys := make([]string, 0, len(resource.Fields))
		for field := range resource.Fields {
			fieldKeys = append(fieldKeys, field)
		}
		sort.Strings(fieldKeys)

		for _, name := range fieldKeys {
			field := resource.Fields[name]
			fmt.Fprintf(&sb, "  %s: %q (from %s, %s)\n",
				name, field.Current.Value, field.Current.Source, field.Current.Reason)

			if len(field.History) > 1 {
				for i, info := range field.History[1:] {
					if i >= 3 {
						fmt.Fprintf(&sb, "    ... and %d more\n", len(field.History)-1-i)
						break
					}
					fmt.Fprintf(&sb, "    - %q from %s at %s\n",
						info.Value, info.Source, info.Timestamp.Format(constants.TimeFormatRecord))
				}
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// File represents a provenance file stored on disk.
type File struct {
	Provenance Map `yaml:"provenance"`
}

// Save writes the map to path as YAML.
func Save(path string, m Map) error {
	data, err := yaml.Marshal(File{Provenance: m})
	if err != nil {
		return fmt.Errorf("failed to encode provenance: %w", err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return fmt.Errorf("failed to write provenance file: %w", err)
	}
	return nil
}

// Load reads provenance data from a YAML file.
// Returns nil, nil if the file doesn't exist.
func Load(path string) (*File, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read provenance file: %w", err)
	}

	var pf File
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse provenance file: %w", err)
	}

	return &pf, nil
}
