package services

// ServiceContainer groups every service facade for handler wiring.
type ServiceContainer struct {
	AuthSvc        AuthSvcFacade
	RateSvc        RateSvcFacade
	FloatSvc       FloatLedgerSvcFacade
	WindowSvc      WindowSvcFacade
	TransactionSvc TransactionSvcFacade
}
