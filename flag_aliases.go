package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var passwordFlagAliases = map[string]string{
	"store-password":  "save-password",
	"forget-password": "delete-password",
}

var configFlagAliases = map[string]string{
	"config-file": "config",
}

func addPasswordFlagAliases(cmds ...*cobra.Command) {
	for _, cmd := range cmds {
		setFlagAliases(cmd.Flags(), passwordFlagAliases)
	}
}

func setFlagAliases(flags *pflag.FlagSet, aliases map[string]string) {
	if len(aliases) == 0 {
		return
	}

	normalize := flags.GetNormalizeFunc()
	alias := aliasNormalizer(aliases)
	flags.SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return normalize(f, string(alias(f, name)))
	})
}

// aliasNormalizer maps each alias to its flag name.
func aliasNormalizer(aliases map[string]string) func(*pflag.FlagSet, string) pflag.NormalizedName {
	return func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if target, ok := aliases[name]; ok {
			name = target
		}
		return pflag.NormalizedName(name)
	}
}
