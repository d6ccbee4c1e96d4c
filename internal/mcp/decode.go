package mcp

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

// decode round-trips tool arguments through JSON into the handler's
// request struct. Unknown keys are ignored so older panel builds can
// keep calling a newer server.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var out T
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}
