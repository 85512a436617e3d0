package middleware

import (
	"homeserve/services/geo"

	"github.com/gin-gonic/gin"
)

const geoLocationKey = "geoLocation"

// GeolocationMiddleware resolves the client IP to an approximate location and
// stores it in the context. Lookups never fail the request.
func GeolocationMiddleware(locator *geo.IPLocator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(geoLocationKey, locator.Lookup(c.Request.Context(), c.ClientIP()))
		c.Next()
	}
}

// GeoLocation returns the location set by GeolocationMiddleware, if any.
func GeoLocation(c *gin.Context) *geo.IPLocation {
	if v, ok := c.Get(geoLocationKey); ok {
		if loc, ok := v.(*geo.IPLocation); ok {
			return loc
		}
	}
	return nil
}
