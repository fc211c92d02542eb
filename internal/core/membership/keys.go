package membership

// badger 键空间布局
//
// 主表与二级索引必须在同一事务中写入，保持同步（见 state.go）。
const (
	keyPrefix = "membership:"

	keyTokenPrefix    = keyPrefix + "token:"    // + token_id → tokenRecord JSON
	keyOwnerIdxPrefix = keyPrefix + "owner:"    // + owner + ":" + token_id → "1"
	keyOperatorPrefix = keyPrefix + "operator:" // + owner + ":" + operator → Expiration JSON
	keyRolePrefix     = keyPrefix + "role:"     // + address + ":" + role_key → "1"
	keyClaimPrefix    = keyPrefix + "claim:"    // + address → "1"/"0"

	keyCounter      = keyPrefix + "counter"
	keyHeight       = keyPrefix + "height"
	keyContractInfo = keyPrefix + "contract_info"
	keyCreator      = keyPrefix + "creator"
	keyFlags        = keyPrefix + "flags"
	keyVersion      = keyPrefix + "contract_version"
)

func tokenKey(tokenID string) string {
	return keyTokenPrefix + tokenID
}

func ownerIdxKey(owner, tokenID string) string {
	return keyOwnerIdxPrefix + owner + ":" + tokenID
}

func operatorKey(owner, operator string) string {
	return keyOperatorPrefix + owner + ":" + operator
}

func roleKey(address, roleTag string) string {
	return keyRolePrefix + address + ":" + roleTag
}

func claimKey(address string) string {
	return keyClaimPrefix + address
}
