package tool

// BaseTool carries the descriptor fields of a tool. Embedding it supplies
// Name, Description, Version, Schema and a Validate that runs the schema.
type BaseTool struct {
	ToolName        string
	ToolDescription string
	ToolVersion     string
	ToolSchema      Schema
}

// Name implements Tool.
func (b BaseTool) Name() string { return b.ToolName }

// Description implements Tool.
func (b BaseTool) Description() string { return b.ToolDescription }

// Version implements Tool. Empty means "1.0.0".
func (b BaseTool) Version() string {
	if b.ToolVersion == "" {
		return "1.0.0"
	}
	return b.ToolVersion
}

// Schema implements Tool.
func (b BaseTool) Schema() Schema { return b.ToolSchema }

// Validate implements Tool.
func (b BaseTool) Validate(args Args) error { return b.ToolSchema.Validate(args) }
