package redis

const (
	// KeyPrefixTool is the prefix for tool document keys
	KeyPrefixTool = "toolshelf:tool:"
	// KeyAllTools is the sorted set of all tool IDs, scored by DateAdded (unix ms)
	KeyAllTools = "toolshelf:tools:all"
)

// ToolKey returns the Redis key for a tool document by ID
func ToolKey(id string) string {
	return KeyPrefixTool + id
}

// AllToolsKey returns the key of the tool ID index
func AllToolsKey() string {
	return KeyAllTools
}
