package aws

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws/defaults"
	"gopkg.in/ini.v1"
)

// Profile is a named profile from the shared AWS files
type Profile struct {
	Name   string
	Region string
	Source string // "credentials", "config" or "both"
}

// sharedFilePaths resolves the credentials and config file locations,
// honouring the standard AWS environment overrides
func sharedFilePaths() (string, string) {
	credsPath := os.Getenv("AWS_SHARED_CREDENTIALS_FILE")
	if credsPath == "" {
		credsPath = defaults.SharedCredentialsFilename()
	}
	configPath := os.Getenv("AWS_CONFIG_FILE")
	if configPath == "" {
		configPath = defaults.SharedConfigFilename()
	}
	return credsPath, configPath
}

// ListProfiles returns the available AWS profiles sorted by name
func ListProfiles() ([]Profile, error) {
	credsPath, configPath := sharedFilePaths()
	return LoadProfiles(credsPath, configPath)
}

// LoadProfiles reads profiles from the given credentials and config files.
// Missing files are skipped.
func LoadProfiles(credsPath, configPath string) ([]Profile, error) {
	profiles := make(map[string]*Profile)

	if _, err := os.Stat(credsPath); err == nil {
		credsFile, err := ini.Load(credsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load credentials file: %w", err)
		}
		for _, section := range credsFile.Sections() {
			if section.Name() == ini.DefaultSection {
				continue
			}
			profiles[section.Name()] = &Profile{Name: section.Name(), Source: "credentials"}
		}
	}

	if _, err := os.Stat(configPath); err == nil {
		configFile, err := ini.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		for _, section := range configFile.Sections() {
			if section.Name() == ini.DefaultSection || strings.HasPrefix(section.Name(), "sso-session ") {
				continue
			}
			name := strings.TrimPrefix(section.Name(), "profile ")
			p, ok := profiles[name]
			if ok {
				p.Source = "both"
			} else {
				p = &Profile{Name: name, Source: "config"}
				profiles[name] = p
			}
			p.Region = section.Key("region").String()
		}
	}

	result := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// IsValidProfile checks if a profile exists
func IsValidProfile(profile string) bool {
	profiles, err := ListProfiles()
	if err != nil {
		return false
	}
	for _, p := range profiles {
		if p.Name == profile {
			return true
		}
	}
	return false
}
