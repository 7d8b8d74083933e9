package inkscape

import (
	"strconv"
)

// FlatpakApp is the application id of the sandboxed Inkscape package.
const FlatpakApp = "org.inkscape.Inkscape"

// exportSpec describes what a single invocation should produce.
type exportSpec struct {
	Source   string
	Output   string
	Width    int
	Height   int
	RegionID string
	DPI      int
}

// commandForm is one way of invoking the rasterizer.
type commandForm struct {
	Name string
	Argv []string
}

// modernArgs builds the 1.x command line.
func modernArgs(spec exportSpec) []string {
	args := []string{
		spec.Source,
		"--export-type=png",
		"--export-filename=" + spec.Output,
	}
	if spec.RegionID != "" {
		return append(args,
			"--export-id="+spec.RegionID,
			"--export-id-only",
			"--export-dpi="+strconv.Itoa(spec.DPI),
		)
	}
	return append(args,
		"--export-width="+strconv.Itoa(spec.Width),
		"--export-height="+strconv.Itoa(spec.Height),
	)
}

// legacyArgs builds the 0.92 command line.
func legacyArgs(spec exportSpec) []string {
	args := []string{"-z", "-e", spec.Output}
	if spec.RegionID != "" {
		args = append(args, "-i", spec.RegionID, "-j", "-d", strconv.Itoa(spec.DPI))
	} else {
		args = append(args, "-w", strconv.Itoa(spec.Width), "-h", strconv.Itoa(spec.Height))
	}
	return append(args, spec.Source)
}

// forms lists the invocations to try, in order.
func (r *Rasterizer) forms(spec exportSpec) []commandForm {
	forms := []commandForm{
		{Name: "modern", Argv: append([]string{r.opts.Binary}, modernArgs(spec)...)},
		{Name: "legacy", Argv: append([]string{r.opts.Binary}, legacyArgs(spec)...)},
	}
	if flatpak, err := r.lookPath("flatpak"); err == nil {
		argv := append([]string{flatpak, "run", FlatpakApp}, modernArgs(spec)...)
		forms = append(forms, commandForm{Name: "flatpak", Argv: argv})
	}
	return forms
}
