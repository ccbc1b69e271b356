package directory

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/KilimcininKorOglu/nspid/internal/nspi"
)

// Seed errors.
var (
	ErrSeedNotFound     = errors.New("directory: seed file not found")
	ErrUnknownProperty  = errors.New("directory: unknown property")
	ErrUnknownContainer = errors.New("directory: unknown container")
	ErrBadPropertyValue = errors.New("directory: bad property value")
)

// Seed is the YAML description of an address book.
type Seed struct {
	Organization string          `yaml:"organization"`
	GALDN        string          `yaml:"galDN"`
	Containers   []SeedContainer `yaml:"containers"`
	Objects      []SeedObject    `yaml:"objects"`
	Templates    []SeedTemplate  `yaml:"templates"`
}

// SeedContainer describes an address list.
type SeedContainer struct {
	Name   string `yaml:"name"`
	DN     string `yaml:"dn"`
	Parent string `yaml:"parent"`
}

// SeedObject describes a mail user, distribution list or other recipient.
type SeedObject struct {
	DN         string                 `yaml:"dn"`
	GUID       string                 `yaml:"guid"`
	Type       string                 `yaml:"type"`
	Containers []string               `yaml:"containers"`
	Props      map[string]interface{} `yaml:"props"`
}

// SeedTemplate describes a display or address creation template.
type SeedTemplate struct {
	DN               string `yaml:"dn"`
	Name             string `yaml:"name"`
	Type             string `yaml:"type"`
	Locale           uint32 `yaml:"locale"`
	AddressType      string `yaml:"addressType"`
	Creation         bool   `yaml:"creation"`
	TemplateData     string `yaml:"templateData"`
	ScriptData       string `yaml:"scriptData"`
	HelpFileName     string `yaml:"helpFileName"`
	HelpFileContents string `yaml:"helpFileContents"`
}

// LoadSeed reads a seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSeedNotFound, path)
		}
		return nil, err
	}
	return ParseSeed(data)
}

// ParseSeed parses seed YAML.
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("directory: parse seed: %w", err)
	}
	return &seed, nil
}

// Build creates a store from the seed.
func (seed *Seed) Build(opts ...Option) (*Store, error) {
	galDN := seed.GALDN
	if galDN == "" {
		galDN = fmt.Sprintf("/o=%s/cn=addrlists/cn=gal", seed.Organization)
	}
	store := NewStore(galDN, opts...)

	ids := make(map[string]uint32, len(seed.Containers))
	for _, sc := range seed.Containers {
		parentID := nspi.GALContainerID
		if sc.Parent != "" {
			id, ok := ids[sc.Parent]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownContainer, sc.Parent)
			}
			parentID = id
		}
		obj := NewObject(sc.DN, nspi.DTContainer)
		obj.SetString(nspi.PidTagDisplayName, sc.Name)
		id, err := store.AddContainer(obj, parentID, 0)
		if err != nil {
			return nil, err
		}
		ids[sc.Name] = id
	}

	for i, so := range seed.Objects {
		obj, err := so.object()
		if err != nil {
			return nil, fmt.Errorf("directory: seed object %d: %w", i, err)
		}
		containerIDs := make([]uint32, 0, len(so.Containers))
		for _, name := range so.Containers {
			id, ok := ids[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownContainer, name)
			}
			containerIDs = append(containerIDs, id)
		}
		if _, err := store.AddObject(obj, containerIDs...); err != nil {
			return nil, err
		}
	}

	for i, st := range seed.Templates {
		t, err := st.template()
		if err != nil {
			return nil, fmt.Errorf("directory: seed template %d: %w", i, err)
		}
		if err := store.AddTemplate(t); err != nil {
			return nil, err
		}
	}

	return store, nil
}

func (so SeedObject) object() (*Object, error) {
	dt := nspi.DTMailUser
	if so.Type != "" {
		var ok bool
		if dt, ok = nspi.ParseDisplayType(so.Type); !ok {
			return nil, fmt.Errorf("directory: unknown display type %q", so.Type)
		}
	}

	obj := NewObject(so.DN, dt)
	if so.GUID != "" {
		g, err := uuid.Parse(so.GUID)
		if err != nil {
			return nil, fmt.Errorf("directory: guid: %w", err)
		}
		obj.GUID = g
	}

	for name, raw := range so.Props {
		tag, ok := nspi.TagByName(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownProperty, name)
		}
		v, err := seedValue(tag, raw)
		if err != nil {
			return nil, err
		}
		obj.Set(v)
	}
	return obj, nil
}

func (st SeedTemplate) template() (*Template, error) {
	dt, ok := nspi.ParseDisplayType(st.Type)
	if !ok {
		return nil, fmt.Errorf("directory: unknown template type %q", st.Type)
	}
	locale := st.Locale
	if locale == 0 {
		locale = nspi.DefaultLocale
	}

	obj := NewObject(st.DN, nspi.DTAddressTemplate)
	obj.SetString(nspi.PidTagDisplayName, st.Name)

	t := &Template{
		Object:       obj,
		Type:         dt,
		Locale:       locale,
		AddressType:  st.AddressType,
		Creation:     st.Creation,
		HelpFileName: st.HelpFileName,
	}

	var err error
	if t.TemplateData, err = decodeBase64(st.TemplateData); err != nil {
		return nil, err
	}
	if t.ScriptData, err = decodeBase64(st.ScriptData); err != nil {
		return nil, err
	}
	if t.HelpFileContents, err = decodeBase64(st.HelpFileContents); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeBase64(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPropertyValue, err)
	}
	return b, nil
}

// seedValue converts a YAML scalar or list to the stored form of tag.
func seedValue(tag nspi.PropTag, raw interface{}) (nspi.PropertyValue, error) {
	bad := func() (nspi.PropertyValue, error) {
		return nspi.PropertyValue{}, fmt.Errorf("%w: %s = %v", ErrBadPropertyValue, tag, raw)
	}

	switch tag.Type() {
	case nspi.PtypString, nspi.PtypString8:
		switch x := raw.(type) {
		case string:
			return nspi.PropertyValue{Tag: tag, Value: x}, nil
		case int:
			return nspi.PropertyValue{Tag: tag, Value: strconv.Itoa(x)}, nil
		}
		return bad()
	case nspi.PtypMultipleString, nspi.PtypMultipleString8:
		list, ok := raw.([]interface{})
		if !ok {
			return bad()
		}
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return bad()
			}
			out = append(out, s)
		}
		return nspi.PropertyValue{Tag: tag, Value: out}, nil
	case nspi.PtypInteger32:
		n, ok := raw.(int)
		if !ok {
			return bad()
		}
		return nspi.PropertyValue{Tag: tag, Value: int32(n)}, nil
	case nspi.PtypBoolean:
		b, ok := raw.(bool)
		if !ok {
			return bad()
		}
		return nspi.PropertyValue{Tag: tag, Value: b}, nil
	case nspi.PtypBinary:
		s, ok := raw.(string)
		if !ok {
			return bad()
		}
		b, err := decodeBase64(s)
		if err != nil {
			return nspi.PropertyValue{}, err
		}
		return nspi.PropertyValue{Tag: tag, Value: b}, nil
	case nspi.PtypMultipleBinary:
		list, ok := raw.([]interface{})
		if !ok {
			return bad()
		}
		out := make([][]byte, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return bad()
			}
			b, err := decodeBase64(s)
			if err != nil {
				return nspi.PropertyValue{}, err
			}
			out = append(out, b)
		}
		return nspi.PropertyValue{Tag: tag, Value: out}, nil
	}
	return bad()
}
