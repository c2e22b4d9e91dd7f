package types

// Gateway API endpoints
const (
	GatewayBalances   = "/v1/balances"
	GatewayTransfer   = "/v1/transfer"
	GatewayDeposit    = "/v1/deposit"
	GatewayTransfers  = "/v1/transfers"
	GatewayChains     = "/v1/chains"
	GatewayAuthCreate = "/v1/auth/api-key"
	GatewayAuthDerive = "/v1/auth/derive-api-key"
)

// Metadata service endpoints
const (
	MetaMarkets = "/v1/markets"
	MetaMarket  = "/v1/markets/" // + market id
)

// AI service endpoints
const (
	AIGenerate = "/v1/generate"
)

// Bundler JSON-RPC methods used by the smart-account wallet
const (
	MethodSendUserOperation      = "eth_sendUserOperation"
	MethodEstimateUserOperation  = "eth_estimateUserOperationGas"
	MethodGetUserOperationByHash = "eth_getUserOperationByHash"
)
