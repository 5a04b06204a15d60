package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type Options struct {
	Config string
}

func NewRootCmd() *cobra.Command {
	opts := &Options{}
	root := &cobra.Command{
		Use:   "devchat",
		Short: "devchat - conversational code generation sessions",
	}

	cobra.OnInitialize(func() {
		initConfig(opts.Config)
	})

	root.PersistentFlags().StringVar(
		&opts.Config,
		"config",
		"",
		"config file (default: ./devchat.yaml)",
	)
	_ = viper.BindPFlag("config", root.PersistentFlags().Lookup("config"))

	root.AddCommand(newChatCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func initConfig(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("devchat")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/devchat")
	}

	viper.SetEnvPrefix("DEVCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	// Unmarshal only sees automatic-env values for keys viper knows about,
	// so the nested openai keys must be bound explicitly.
	for _, key := range []string{
		"openai.api_key",
		"openai.base_url",
		"openai.premium_model",
		"openai.standard_model",
		"verbose",
	} {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return
		}
		fmt.Fprintln(os.Stderr, err.Error())
	}
}
