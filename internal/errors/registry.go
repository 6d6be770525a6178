package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config errors (A100-A119)
	// ============================================

	"A100": {
		Category: CategoryConfig,
		Message:  "No arkos.json found",
		Detail:   "Arkos commands must run inside a project containing an arkos.json file.",
	},
	"A101": {
		Category: CategoryConfig,
		Message:  "Invalid arkos.json",
		Detail:   "The arkos.json file could not be parsed.",
	},
	"A102": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A field in arkos.json is outside its allowed range.",
	},
	"A110": {
		Category: CategoryConfig,
		Message:  "Application entry point not found",
		Detail:   "The configured entry point does not exist on disk.",
	},

	// ============================================
	// CLI errors (A120-A139)
	// ============================================

	"A120": {
		Category: CategoryCLI,
		Message:  "Generated types are missing",
		Detail:   "The dev server needs the generated types artifact before it can start.",
	},
	"A121": {
		Category: CategoryCLI,
		Message:  "Unknown generator component",
		Detail:   "The generate command only understands controller, service, router and types.",
	},
	"A122": {
		Category: CategoryCLI,
		Message:  "Target file already exists",
		Detail:   "Generators never overwrite existing files.",
	},

	// ============================================
	// Environment errors (A140-A159)
	// ============================================

	"A140": {
		Category: CategoryEnv,
		Message:  "Failed to load environment file",
		Detail:   "An environment file exists but could not be read or parsed.",
	},
	"A141": {
		Category: CategoryEnv,
		Message:  "Required environment variable missing",
		Detail:   "A variable the application depends on is absent after loading all environment files.",
	},

	// ============================================
	// Build and process errors (A160-A179)
	// ============================================

	"A160": {
		Category: CategoryBuild,
		Message:  "Build failed",
		Detail:   "The Go compiler reported errors while building the application.",
	},
	"A161": {
		Category: CategoryBuild,
		Message:  "Invalid build target",
		Detail:   "Build targets must be of the form os/arch, e.g. linux/amd64.",
	},
	"A170": {
		Category: CategoryProcess,
		Message:  "Failed to start application process",
		Detail:   "The application binary could not be spawned.",
	},
	"A171": {
		Category: CategoryProcess,
		Message:  "Application binary not found",
		Detail:   "No built application was found. Run 'arkos build' first.",
	},
}
