package handlers

// HandlerBundle groups the handlers the router mounts.
type HandlerBundle struct {
	Wizard    *WizardHandler
	Catalog   *CatalogHandler
	Providers *ProviderHandler
	Notes     *NotesHandler
	Bookings  *BookingHandler
	Chat      *ChatHandler
	Health    *HealthHandler
}
