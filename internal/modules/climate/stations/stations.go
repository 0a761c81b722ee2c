package stations

import "ghcn-dashboard/internal/modules/climate/types"

// Default returns the compiled-in station list, display name to GHCN id.
func Default() []types.Station {
	return []types.Station{
		{Name: "Chicago, IL", ID: "USW00094846"},
		{Name: "New York, NY", ID: "USW00094728"},
		{Name: "Los Angeles, CA", ID: "USW00093134"},
		{Name: "Miami, FL", ID: "USW00012839"},
		{Name: "Denver, CO", ID: "USW00023062"},
	}
}
