package config

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/ini.v1"
	"howett.net/plist"
)

// Persisted key names shared by every backend.
const (
	keyPort        = "port"
	keyIPAddresses = "ip_addresses"
	keySecret      = "secret"
)

var requiredKeys = []string{keyPort, keyIPAddresses, keySecret}

type document struct {
	Port        uint16 `plist:"port"`
	IPAddresses string `plist:"ip_addresses"`
	Secret      string `plist:"secret"`
}

func toDocument(cfg Configuration) document {
	return document{
		Port:        cfg.Port,
		IPAddresses: FormatAddresses(cfg.Addresses),
		Secret:      cfg.Secret,
	}
}

func (d document) configuration() Configuration {
	return Configuration{
		Port:      d.Port,
		Addresses: ParseAddresses(d.IPAddresses),
		Secret:    d.Secret,
	}
}

// verifyEncoded decodes data again and fails when it does not reproduce doc.
func verifyEncoded(format string, data []byte, doc document, decode func([]byte) (document, error)) error {
	got, err := decode(data)
	if err != nil {
		return fmt.Errorf("%s cannot represent the configuration: %w", format, err)
	}
	for _, v := range []struct {
		key       string
		got, want string
	}{
		{keyPort, strconv.FormatUint(uint64(got.Port), 10), strconv.FormatUint(uint64(doc.Port), 10)},
		{keyIPAddresses, got.IPAddresses, doc.IPAddresses},
		{keySecret, got.Secret, doc.Secret},
	} {
		if v.got != v.want {
			return fmt.Errorf("%s cannot represent %q exactly", format, v.key)
		}
	}
	return nil
}

// PlistCodec stores the configuration as an XML property list dictionary.
type PlistCodec struct{}

func (PlistCodec) Encode(cfg Configuration) ([]byte, error) {
	doc := toDocument(cfg)
	data, err := plist.MarshalIndent(doc, plist.XMLFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("encode property list: %w", err)
	}
	if err := verifyEncoded("property list", data, doc, decodePlist); err != nil {
		return nil, err
	}
	return data, nil
}

func (PlistCodec) Decode(data []byte) (Configuration, error) {
	doc, err := decodePlist(data)
	if err != nil {
		return Configuration{}, err
	}
	return doc.configuration(), nil
}

func decodePlist(data []byte) (document, error) {
	var keys map[string]interface{}
	if _, err := plist.Unmarshal(data, &keys); err != nil {
		return document{}, fmt.Errorf("decode property list: %w", err)
	}
	for _, key := range requiredKeys {
		if _, ok := keys[key]; !ok {
			return document{}, fmt.Errorf("property list is missing %q", key)
		}
	}

	var doc document
	if _, err := plist.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("decode property list: %w", err)
	}
	return doc, nil
}

// iniOptions keep values verbatim: quotes, trailing backslashes and
// comment characters are part of the value.
var iniOptions = ini.LoadOptions{
	PreserveSurroundedQuote: true,
	IgnoreContinuation:      true,
	IgnoreInlineComment:     true,
}

// INICodec stores the configuration as key=value lines in the default
// section of an INI file.
type INICodec struct{}

func (INICodec) Encode(cfg Configuration) ([]byte, error) {
	doc := toDocument(cfg)

	file := ini.Empty(iniOptions)
	section := file.Section(ini.DefaultSection)
	values := []struct{ key, value string }{
		{keyPort, strconv.FormatUint(uint64(doc.Port), 10)},
		{keyIPAddresses, doc.IPAddresses},
		{keySecret, doc.Secret},
	}
	for _, v := range values {
		if _, err := section.NewKey(v.key, v.value); err != nil {
			return nil, fmt.Errorf("encode ini key %q: %w", v.key, err)
		}
	}

	var buf bytes.Buffer
	if _, err := file.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode ini: %w", err)
	}
	data := buf.Bytes()
	if err := verifyEncoded("ini", data, doc, decodeINI); err != nil {
		return nil, err
	}
	return data, nil
}

func (INICodec) Decode(data []byte) (Configuration, error) {
	doc, err := decodeINI(data)
	if err != nil {
		return Configuration{}, err
	}
	return doc.configuration(), nil
}

func decodeINI(data []byte) (document, error) {
	file, err := ini.LoadSources(iniOptions, data)
	if err != nil {
		return document{}, fmt.Errorf("decode ini: %w", err)
	}

	section := file.Section(ini.DefaultSection)
	for _, key := range requiredKeys {
		if !section.HasKey(key) {
			return document{}, fmt.Errorf("ini is missing %q", key)
		}
	}

	port, err := strconv.ParseUint(section.Key(keyPort).String(), 10, 16)
	if err != nil {
		return document{}, fmt.Errorf("decode ini port: %w", err)
	}

	return document{
		Port:        uint16(port),
		IPAddresses: section.Key(keyIPAddresses).String(),
		Secret:      section.Key(keySecret).String(),
	}, nil
}
