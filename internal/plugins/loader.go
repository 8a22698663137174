package plugins

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	goplugin "github.com/hashicorp/go-plugin"

	"github.com/relayforge/relayforge/pkg/pluginsdk"
)

// loadCompiled launches the compiled plugin executable sitting
// alongside a validated source file (same base name, no extension) as
// an isolated subprocess speaking go-plugin's net/rpc protocol, and
// returns an RPC-backed Provider plus the client handle needed to tear
// the subprocess down. The source file is what the static validator
// inspects; the subprocess is what actually runs, in its own address
// space, so a validated-but-malicious binary can't corrupt the host
// process directly.
func loadCompiled(sourcePath string) (pluginsdk.Provider, *goplugin.Client, error) {
	binPath, err := ValidatePluginPath(binPathFor(sourcePath))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid plugin binary path: %w", err)
	}

	client := goplugin.NewClient(&goplugin.ClientConfig{
		HandshakeConfig: pluginsdk.Handshake,
		Plugins: map[string]goplugin.Plugin{
			"provider": &pluginsdk.ProviderPlugin{},
		},
		Cmd:              exec.Command(binPath),
		AllowedProtocols: []goplugin.Protocol{goplugin.ProtocolNetRPC},
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("start plugin %s: %w", binPath, err)
	}
	raw, err := rpcClient.Dispense("provider")
	if err != nil {
		client.Kill()
		return nil, nil, fmt.Errorf("dispense plugin %s: %w", binPath, err)
	}
	provider, ok := raw.(pluginsdk.Provider)
	if !ok {
		client.Kill()
		return nil, nil, fmt.Errorf("plugin %s does not implement pluginsdk.Provider", binPath)
	}
	return provider, client, nil
}

// binPathFor derives the compiled plugin executable's path from its
// validated source file: same directory and base name, extension
// dropped.
func binPathFor(sourcePath string) string {
	ext := filepath.Ext(sourcePath)
	return strings.TrimSuffix(sourcePath, ext)
}
