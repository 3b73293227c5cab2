package commands

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

const (
	headerFile     = "native_app.h"
	archiveFile    = "libnative_app.a"
	iosMinVersion  = "13.0"
	bridgePackage  = "./cbridge"
	defaultOutRoot = "build/ios"
)

// iosTarget describes one slice of the static archive.
type iosTarget struct {
	Name string
	SDK  string
	// MinFlag sets the deployment target for the SDK.
	MinFlag string
}

var (
	targetSimulator = iosTarget{Name: "ios-arm64-simulator", SDK: "iphonesimulator", MinFlag: "-mios-simulator-version-min=" + iosMinVersion}
	targetDevice    = iosTarget{Name: "ios-arm64", SDK: "iphoneos", MinFlag: "-miphoneos-version-min=" + iosMinVersion}
)

// BuildIOS implements the 'nativeapp build-ios' command
func BuildIOS(args []string) error {
	fs := flag.NewFlagSet("build-ios", flag.ExitOnError)
	simulator := fs.Bool("simulator", false, "Build for iOS simulator")
	device := fs.Bool("device", false, "Build for physical iOS device")
	release := fs.Bool("release", false, "Strip symbols and debug info")
	rev1 := fs.Bool("rev1", false, "Use the ios_view_obj layout with callback_to_swift")
	out := fs.String("out", defaultOutRoot, "Output directory")
	fs.Parse(args)

	// Default to simulator if neither specified
	if !*simulator && !*device {
		*simulator = true
	}

	if runtime.GOOS != "darwin" {
		return fmt.Errorf("iOS builds require macOS")
	}

	var targets []iosTarget
	if *simulator {
		targets = append(targets, targetSimulator)
	}
	if *device {
		targets = append(targets, targetDevice)
	}

	for _, target := range targets {
		fmt.Printf("Building for %s...\n", target.Name)

		dir := filepath.Join(*out, target.Name)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}

		cmd := exec.Command("go", goBuildArgs(filepath.Join(dir, archiveFile), *rev1, *release)...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Env = append(os.Environ(), iosBuildEnv(target)...)

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("build failed for %s: %w", target.Name, err)
		}

		// Hosts include the hand-written header, not the generated libnative_app.h
		if err := copyFile(filepath.Join("cbridge", headerFile), filepath.Join(dir, headerFile)); err != nil {
			return err
		}

		fmt.Printf("✓ Built for %s\n", target.Name)
	}

	fmt.Println("")
	fmt.Println("Build outputs:")
	for _, target := range targets {
		fmt.Printf("  %s\n", filepath.Join(*out, target.Name, archiveFile))
	}
	if *rev1 {
		fmt.Println("")
		fmt.Println("Define NATIVE_APP_REVISION=1 before including native_app.h in the host.")
	}
	return nil
}

func goBuildArgs(output string, rev1, release bool) []string {
	args := []string{"build", "-buildmode=c-archive", "-o", output}
	if rev1 {
		args = append(args, "-tags", "nativeapp_rev1")
	}
	if release {
		args = append(args, "-trimpath", "-ldflags=-s -w")
	}
	return append(args, bridgePackage)
}

func iosBuildEnv(target iosTarget) []string {
	return []string{
		"GOOS=ios",
		"GOARCH=arm64",
		"CGO_ENABLED=1",
		"CC=xcrun --sdk " + target.SDK + " clang",
		"CGO_CFLAGS=-arch arm64 " + target.MinFlag,
		"CGO_LDFLAGS=-arch arm64 " + target.MinFlag,
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return nil
}
