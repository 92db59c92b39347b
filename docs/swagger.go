package docs

// @title           Campus Radar API
// @version         1.0
// @description     Proximity discovery for campus users: location updates, nearby search, privacy settings and privacy-filtered profiles.

// @host      localhost:3010
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and an access token.
