package repositories

// RepositoryProvider groups every repository facade behind one container so
// wiring stays in a single place.
type RepositoryProvider struct {
	RateRepo        RateRepositoryFacade
	WindowRepo      WindowRepositoryFacade
	FloatRepo       FloatRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	MasterRepo      MasterDataRepositoryFacade
	TxManager       TransactionManager
}
