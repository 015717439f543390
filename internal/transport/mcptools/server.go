package mcptools

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/kailas-cloud/gaiachat/internal/version"
)

const instructions = `GaiaChat exposes the Gaia DR3 catalog. Velocities are Galactocentric
cylindrical components in km/s with V_phi positive along disk rotation.
Stream and halo searches derive velocities and keep only matching stars.`

// NewServer creates an MCP server with every catalog tool registered.
func NewServer(c Catalog) *server.MCPServer {
	s := server.NewMCPServer(
		"gaiachat",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	cone := NewConeTool(c)
	s.AddTool(cone.Definition(), cone.Handle)

	solar := NewSolarTool(c)
	s.AddTool(solar.Definition(), solar.Handle)

	hvs := NewHypervelocityTool(c)
	s.AddTool(hvs.Definition(), hvs.Handle)

	stream := NewStreamTool(c)
	s.AddTool(stream.Definition(), stream.Handle)

	halo := NewHaloTool(c)
	s.AddTool(halo.Definition(), halo.Handle)

	query := NewQueryTool(c)
	s.AddTool(query.Definition(), query.Handle)

	build := NewBuildTool(c)
	s.AddTool(build.Definition(), build.Handle)

	pops := NewPopulationsTool(c)
	s.AddTool(pops.Definition(), pops.Handle)

	return s
}
