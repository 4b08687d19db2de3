// yangctl loads YANG modules into a context and inspects LYB data
// against it.
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/neoul/yangcontext"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "yangctl",
		Short:        "Inspect YANG contexts and LYB data",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringSlice("searchdir", nil, "module search directory")
	root.PersistentFlags().Bool("no-yang-library", false, "skip the ietf-yang-library built-ins")
	root.PersistentFlags().Bool("prefer-searchdirs", false, "consult search dirs before the import callback")
	viper.BindPFlag("searchdir", root.PersistentFlags().Lookup("searchdir"))
	viper.BindPFlag("no-yang-library", root.PersistentFlags().Lookup("no-yang-library"))
	viper.BindPFlag("prefer-searchdirs", root.PersistentFlags().Lookup("prefer-searchdirs"))
	viper.SetConfigName("yangctl")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // the config file is optional

	root.AddCommand(newInfoCmd(), newDumpCmd())
	return root
}

func newContext() (*yangcontext.Context, error) {
	var options yangcontext.ContextOptions
	if viper.GetBool("no-yang-library") {
		options |= yangcontext.NoYangLibrary
	}
	if viper.GetBool("prefer-searchdirs") {
		options |= yangcontext.PreferSearchDirs
	}
	return yangcontext.New(viper.GetStringSlice("searchdir"), options)
}

func loadModules(c *yangcontext.Context, names []string) error {
	for _, name := range names {
		modname, revision := splitAtRevision(name)
		if _, err := c.LoadModule(modname, revision); err != nil {
			return err
		}
	}
	return nil
}

func splitAtRevision(name string) (string, string) {
	for i := range name {
		if name[i] == '@' {
			return name[:i], name[i+1:]
		}
	}
	return name, ""
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info MODULE[@REVISION]...",
		Short: "Load modules and print the yang-library tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContext()
			if err != nil {
				return err
			}
			defer c.Destroy(nil)
			if err := loadModules(c, args); err != nil {
				return err
			}
			info, err := c.Info()
			if err != nil {
				return err
			}
			out, err := yaml.Marshal(treeToYAML(info))
			if err != nil {
				return err
			}
			fmt.Print(string(out))
			return nil
		},
	}
}

func newDumpCmd() *cobra.Command {
	var strict bool
	var modules []string
	cmd := &cobra.Command{
		Use:   "dump FILE.lyb",
		Short: "Decode a LYB file and print its nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContext()
			if err != nil {
				return err
			}
			defer c.Destroy(nil)
			if err := loadModules(c, modules); err != nil {
				return err
			}
			data, err := ioutil.ReadFile(args[0])
			if err != nil {
				return err
			}
			var opts yangcontext.LYBOption
			if strict {
				opts |= yangcontext.LYBStrict
			}
			tree, unresolved, err := c.DecodeLYB(data, opts)
			if err != nil {
				return err
			}
			printTree(tree)
			for _, ref := range unresolved {
				fmt.Printf("# unresolved %s = %s\n", ref.Node.Path(), ref.Canonical)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on unknown modules and schema nodes")
	cmd.Flags().StringSliceVar(&modules, "module", nil, "module to load before decoding")
	return cmd
}

func printTree(node yangcontext.DataNode) {
	for _, child := range node.Children() {
		if child.IsLeafNode() {
			fmt.Printf("%s = %s\n", child.Path(), child.ValueString())
			continue
		}
		if len(child.Children()) == 0 {
			fmt.Printf("%s\n", child.Path())
		}
		printTree(child)
	}
}

// treeToYAML converts a data tree to plain maps and slices for the YAML
// printer.
func treeToYAML(node yangcontext.DataNode) interface{} {
	if node.IsLeafNode() {
		return node.ValueString()
	}
	obj := map[string]interface{}{}
	for _, child := range node.Children() {
		name := child.Name()
		if child.IsList() || child.IsLeafList() {
			list, _ := obj[name].([]interface{})
			obj[name] = append(list, treeToYAML(child))
			continue
		}
		obj[name] = treeToYAML(child)
	}
	return obj
}
