package registry

import "strconv"

// zebradRecipe builds zebrad with cargo.
type zebradRecipe struct{}

func (zebradRecipe) RequiredTools() []string {
	return []string{"git", "cargo", "rustc"}
}

func (zebradRecipe) Build(repo string, jobs int, logPath string) (string, error) {
	args := []string{"build", "--release", "--bin", "zebrad"}
	if jobs > 0 {
		args = append(args, "--jobs", strconv.Itoa(jobs))
	}

	if err := runBuildCommand(repo, logPath, "cargo", args...); err != nil {
		return "", err
	}

	return "target/release/zebrad", nil
}

func specZebrad() *Spec {
	return &Spec{
		ID:            Zebrad,
		BinaryNames:   []string{"zebrad"},
		DefaultOutput: "target/release/zebrad",
		Recipe:        zebradRecipe{},
		Probe:         versionFlagProbe{},
	}
}
