package commands

import (
	"flag"
	"fmt"
	"os"

	"github.com/agiangrant/nativeapp"
)

const sampleScriptFile = "input.toml"

// Init implements the 'nativeapp init' command
func Init(args []string) error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	engine := fs.String("engine", nativeapp.EngineRecorder, "Engine kind (nop, recorder or native)")
	libPath := fs.String("lib", "", "Path to the native_app library")
	force := fs.Bool("force", false, "Overwrite existing files")
	fs.Parse(args)

	if _, err := os.Stat(nativeapp.ConfigFile); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", nativeapp.ConfigFile)
	}

	config := nativeapp.DefaultConfig()
	config.Engine.Kind = *engine
	config.Engine.LibPath = *libPath
	if err := config.Validate(); err != nil {
		return err
	}

	if err := nativeapp.SaveConfig(nativeapp.ConfigFile, config); err != nil {
		return err
	}
	fmt.Printf("  ✓ Created %s\n", nativeapp.ConfigFile)

	if _, err := os.Stat(sampleScriptFile); os.IsNotExist(err) || *force {
		if err := os.WriteFile(sampleScriptFile, []byte(sampleScript), 0644); err != nil {
			return fmt.Errorf("failed to create %s: %w", sampleScriptFile, err)
		}
		fmt.Printf("  ✓ Created %s\n", sampleScriptFile)
	}

	fmt.Println("")
	fmt.Println("Next steps:")
	fmt.Printf("  nativeapp run --script %s\n", sampleScriptFile)
	if config.Engine.Kind == nativeapp.EngineNative {
		fmt.Println("  nativeapp check")
	}
	return nil
}

const sampleScript = `# Timed input replayed by 'nativeapp run'.
# kind: touch_begin, touch_move, touch_end, text, backspace

[[event]]
at_ms = 0
kind = "touch_begin"
x = 100.0
y = 200.0

[[event]]
at_ms = 16
kind = "touch_move"
x = 110.0
y = 205.0

[[event]]
at_ms = 33
kind = "touch_end"
x = 110.0
y = 205.0

[[event]]
at_ms = 50
kind = "text"
text = "hello"

[[event]]
at_ms = 66
kind = "backspace"
`
