package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/kitchensink/internal/config"
	"github.com/aretw0/kitchensink/pkg/adapters/redis"
	"github.com/aretw0/kitchensink/pkg/codec"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect and feed the catalog store",
}

var showCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Print the catalog held in a store file as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path := cfg.Store.Path
		if len(args) == 1 {
			path = args[0]
		}
		if flag, _ := cmd.Flags().GetString("codec"); flag != "" {
			cfg.Store.Codec = flag
		}

		c, err := storeCodec(cfg.Store)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		v, err := c.Unmarshal(data)
		if err != nil {
			return fmt.Errorf("failed to decode %s as %s: %w", path, cfg.Store.Codec, err)
		}

		out, err := codec.YAML[Catalog]{}.Marshal(v)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Publish a catalog file (YAML or JSON) to the configured Redis key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is not configured")
		}

		v, err := readCatalog(args[0])
		if err != nil {
			return err
		}

		c, err := codec.ByName[Catalog](cfg.Store.Codec)
		if err != nil {
			return err
		}
		rf := redis.New[Catalog](cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Key, c, redis.WithPrefix(cfg.Redis.Prefix))
		defer rf.Close()

		if err := rf.Publish(cmd.Context(), v); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "published catalog version %d to %s\n", v.Version, rf.Key())
		return nil
	},
}

// storeCodec builds the codec of the store file, sealing it when an
// encryption key is configured. Values in Redis are never encrypted.
func storeCodec(cfg config.StoreConfig) (codec.Codec[Catalog], error) {
	c, err := codec.ByName[Catalog](cfg.Codec)
	if err != nil {
		return nil, err
	}
	if cfg.EncryptionKey == "" {
		return c, nil
	}

	active, err := base64.StdEncoding.DecodeString(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	var fallback [][]byte
	for i, k := range cfg.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	enc, err := codec.NewEncrypted(c, active, fallback...)
	if err != nil {
		return nil, fmt.Errorf("store encryption: %w", err)
	}
	return enc, nil
}

// readCatalog decodes a catalog file, picking the codec from its extension.
// Anything but .json is read as YAML.
func readCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}

	var c codec.Codec[Catalog] = codec.YAML[Catalog]{}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		c = codec.JSON[Catalog]{}
	}
	v, err := c.Unmarshal(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return v, nil
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(showCmd, publishCmd)
	showCmd.Flags().String("codec", "", "Codec of the store file (json, yaml, msgpack)")
}
