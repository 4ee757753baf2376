package domain

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool { return t == ThemeLight || t == ThemeDark }

type UserPreferences struct {
	Theme                 Theme  `json:"theme"`
	MapType               string `json:"mapType"`
	ShowAlternativeRoutes bool   `json:"showAlternativeRoutes"`
}

func DefaultPreferences() UserPreferences {
	return UserPreferences{
		Theme:                 ThemeLight,
		MapType:               "roadmap",
		ShowAlternativeRoutes: true,
	}
}

// PreferencesPatch is a partial update; nil fields are left untouched.
type PreferencesPatch struct {
	Theme                 *Theme  `json:"theme,omitempty"`
	MapType               *string `json:"mapType,omitempty"`
	ShowAlternativeRoutes *bool   `json:"showAlternativeRoutes,omitempty"`
}

func (p PreferencesPatch) Empty() bool {
	return p.Theme == nil && p.MapType == nil && p.ShowAlternativeRoutes == nil
}
