// Package config publishes a device configuration document onto the bus.
// Each top-level key of the JSON object becomes a retained message on
// "config/<key>", which is where services such as the HAL listen.
package config

import (
	"encoding/json"
	"errors"
	"os"

	"chargepath-go/bus"
)

const configPrefix = "config"

var ErrNotObject = errors.New("config is not a JSON object")

// Publish decodes raw and publishes every key retained.
func Publish(conn *bus.Connection, raw []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	if m == nil {
		return ErrNotObject
	}
	for k, v := range m {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		conn.Publish(conn.NewMessage(bus.T(configPrefix, k), val, true))
	}
	return nil
}

// PublishFile is Publish for a file on disk.
func PublishFile(conn *bus.Connection, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return Publish(conn, raw)
}
