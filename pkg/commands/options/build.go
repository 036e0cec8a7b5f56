package options

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tableflip.dev/dynlink/pkg/field"
)

// BuildOptions
type BuildOptions struct {
	Link      string
	Domain    string
	Params    ParamsValue
	NoShorten bool
}

func AddBuildArgs(cmd *cobra.Command, o *BuildOptions) {
	cmd.Flags().StringVar(&o.Link, "link", "",
		"Target link the dynamic link opens, example: --link=https://example.com/promo.")
	cmd.Flags().StringVar(&o.Domain, "domain", "",
		"Dynamic link domain. Defaults to the configured domain.")
	cmd.Flags().Var(&o.Params, "set",
		fmt.Sprintf("Optional parameter as key=value, repeatable. Keys: %s.", strings.Join(optionalKeys(), ", ")))
	cmd.Flags().BoolVar(&o.NoShorten, "no-shorten", false,
		"Only assemble the long link.")
}

// Values merges --set parameters with --link and --domain.
func (o *BuildOptions) Values(defaultDomain string) field.Values {
	v := o.Params.Values()
	if o.Link != "" {
		v.Set(field.Link, o.Link)
	}
	if o.Domain != "" {
		v.Set(field.Domain, o.Domain)
	}
	if _, ok := v.Lookup(field.Domain); !ok && defaultDomain != "" {
		v.Set(field.Domain, defaultDomain)
	}
	return v
}

func optionalKeys() []string {
	var out []string
	for _, spec := range field.DefaultSchema() {
		for _, id := range spec.Items {
			out = append(out, id.Key())
		}
	}
	return out
}

// ParamsValue is a repeatable key=value flag. Keys are checked against the
// parameter schema when the flag is parsed.
type ParamsValue struct {
	values field.Values
}

var _ pflag.Value = (*ParamsValue)(nil)

func (p *ParamsValue) Set(raw string) error {
	k, v, ok := strings.Cut(raw, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", raw)
	}
	id, err := field.ParseID(k)
	if err != nil {
		return err
	}
	if p.values == nil {
		p.values = make(field.Values)
	}
	p.values.Set(id, v)
	return nil
}

func (p *ParamsValue) String() string {
	if len(p.values) == 0 {
		return ""
	}
	pairs := make([]string, 0, len(p.values))
	for k, v := range p.values.Strings() {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (p *ParamsValue) Type() string { return "key=value" }

// Values returns a copy of the parsed parameters.
func (p *ParamsValue) Values() field.Values {
	if p.values == nil {
		return make(field.Values)
	}
	return p.values.Clone()
}
