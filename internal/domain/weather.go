package domain

type WeatherReport struct {
	Location    string  `json:"location"`
	Description string  `json:"description"`
	TempC       float64 `json:"temp_c"`
	FeelsLikeC  float64 `json:"feels_like_c"`
	Humidity    int     `json:"humidity"`
	WindKPH     float64 `json:"wind_kph"`
}
