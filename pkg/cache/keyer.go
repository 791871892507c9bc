package cache

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey identifies the layout of a whole chart.
	LayoutKey(chartHash string, opts LayoutKeyOpts) string

	// RowKey identifies the layout of a single row input.
	RowKey(inputHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the options that change a computed layout.
type LayoutKeyOpts struct {
	Unit        string `json:"unit"`
	Precision   string `json:"precision"`
	LevelHeight int    `json:"level_height"`
	PillHeight  int    `json:"pill_height"`
	NoSnap      bool   `json:"no_snap"`
	// Now matters only for charts without an explicit window or records.
	Now string `json:"now,omitempty"`
}

// ArtifactKeyOpts are the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Width      float64 `json:"width,omitempty"`
	LabelWidth float64 `json:"label_width,omitempty"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key builder.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) LayoutKey(chartHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", chartHash, opts)
}

func (DefaultKeyer) RowKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey("row", inputHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
