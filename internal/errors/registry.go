package errors

// Template defines a registered diagnostic.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

var registry = map[string]Template{
	// ============================================
	// Structural API warnings (W001-W099)
	// ============================================

	"W001": {
		Category: CategoryStructure,
		Message:  "Cannot set reactive property on undefined, null, or primitive value",
		Detail:   "Set only adds reactive properties to objects and arrays.",
	},
	"W002": {
		Category: CategoryStructure,
		Message:  "Cannot delete reactive property on undefined, null, or primitive value",
		Detail:   "Del only removes properties from objects and arrays.",
	},
	"W003": {
		Category:   CategoryStructure,
		Message:    "Avoid adding reactive properties to a root instance or its root state at runtime",
		Detail:     "Consumers that already read the root state will not see keys added later.",
		Suggestion: "Declare the key upfront in the initial state.",
	},
	"W004": {
		Category:   CategoryStructure,
		Message:    "Avoid deleting properties on a root instance or its root state",
		Suggestion: "Set the property to nil instead.",
	},
	"W005": {
		Category: CategoryStructure,
		Message:  "Invalid array index",
		Detail:   "Array keys must be whole numbers from 0 to 4294967294.",
	},

	// ============================================
	// Runtime faults (E101-E199)
	// ============================================

	"E101": {
		Category: CategoryRuntime,
		Message:  "Property is not writable",
	},
	"E102": {
		Category: CategoryRuntime,
		Message:  "Object is not extensible",
	},
	"E103": {
		Category: CategoryRuntime,
		Message:  "Property is not configurable",
	},

	// ============================================
	// Config errors (C201-C299)
	// ============================================

	"C201": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration file",
		Suggestion: "Check reactive.json for syntax errors.",
	},
	"C202": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"C203": {
		Category: CategoryConfig,
		Message:  "Invalid environment override",
	},

	// ============================================
	// Document and snapshot errors (D301-D399)
	// ============================================

	"D301": {
		Category: CategoryDocument,
		Message:  "Document could not be parsed",
	},
	"D302": {
		Category:   CategoryDocument,
		Message:    "Unsupported document format",
		Suggestion: "Use a .json, .yaml, .yml or .toml file.",
	},
	"D303": {
		Category: CategoryDocument,
		Message:  "Snapshot not found",
	},
	"D304": {
		Category: CategoryDocument,
		Message:  "Invalid document path",
	},

	// ============================================
	// Devtools and CLI errors (X401-X499)
	// ============================================

	"X401": {
		Category: CategoryCLI,
		Message:  "Invalid request",
	},
	"X402": {
		Category: CategoryCLI,
		Message:  "Unknown watcher",
	},
	"X403": {
		Category:   CategoryCLI,
		Message:    "Snapshots are not enabled",
		Suggestion: "Configure a snapshot backend in reactive.json.",
	},
	"X404": {
		Category: CategoryCLI,
		Message:  "Invalid mutation",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
