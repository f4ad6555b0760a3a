package postgres

const (
	// User queries
	queryInsertUser = `
		INSERT INTO users (username, password_hash, email, fullname, created_on, is_admin, failed_attempts, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING user_id`

	queryGetUserByID = `
		SELECT user_id, username, password_hash, email, fullname, created_on, is_admin, failed_attempts, last_login
		FROM users
		WHERE user_id = $1`

	queryGetUserByUsername = `
		SELECT user_id, username, password_hash, email, fullname, created_on, is_admin, failed_attempts, last_login
		FROM users
		WHERE username = $1`

	querySetFailedAttempts = `
		UPDATE users SET failed_attempts = $1 WHERE user_id = $2`

	queryRecordLogin = `
		UPDATE users SET failed_attempts = 0, last_login = $1 WHERE user_id = $2`

	// Account queries
	queryInsertAccount = `
		INSERT INTO accounts (user_id, currency_code, balance, created_on, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING account_id`

	queryGetAccountByID = `
		SELECT account_id, user_id, currency_code, balance, created_on, is_active
		FROM accounts
		WHERE account_id = $1`

	queryGetAccountForUpdate = `
		SELECT account_id, user_id, currency_code, balance, created_on, is_active
		FROM accounts
		WHERE account_id = $1
		FOR UPDATE`

	queryGetAccountByUserAndCurrency = `
		SELECT account_id, user_id, currency_code, balance, created_on, is_active
		FROM accounts
		WHERE user_id = $1 AND currency_code = $2`

	queryListAccountsByUser = `
		SELECT account_id, user_id, currency_code, balance, created_on, is_active
		FROM accounts
		WHERE user_id = $1
		ORDER BY account_id`

	queryUpdateAccountBalance = `
		UPDATE accounts SET balance = balance + $1 WHERE account_id = $2`

	queryDeactivateAccount = `
		UPDATE accounts SET is_active = false
		WHERE account_id = $1 AND user_id = $2 AND is_active = true`

	// Transaction-log queries
	queryInsertTransaction = `
		INSERT INTO transactions (tx_id, tx_time, type, from_user_id, from_account_id, to_user_id, to_account_id, amount, currency_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	queryListByAccountBetween = `
		SELECT tx_id, tx_time, type, from_user_id, from_account_id, to_user_id, to_account_id, amount, currency_code
		FROM transactions
		WHERE (from_account_id = $1 OR to_account_id = $1)
		  AND tx_time >= $2 AND tx_time <= $3
		ORDER BY tx_time ASC`

	queryDailyOutflow = `
		SELECT (tx_time::date) AS day, COALESCE(SUM(amount), 0) AS amount
		FROM transactions
		WHERE from_account_id = $1
		  AND tx_time >= $2 AND tx_time <= $3
		GROUP BY 1
		ORDER BY 1 ASC`

	queryNetFlow = `
		WITH inflow AS (
			SELECT COALESCE(SUM(amount), 0) AS amt FROM transactions
			WHERE to_account_id = $1 AND tx_time > $2 AND tx_time <= $3
		), outflow AS (
			SELECT COALESCE(SUM(amount), 0) AS amt FROM transactions
			WHERE from_account_id = $1 AND tx_time > $2 AND tx_time <= $3
		)
		SELECT inflow.amt - outflow.amt FROM inflow CROSS JOIN outflow`

	queryNetBefore = `
		SELECT COALESCE(SUM(CASE WHEN to_account_id = $1 THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE (from_account_id = $1 OR to_account_id = $1) AND tx_time < $2`

	// Currency queries
	queryInsertCurrency = `
		INSERT INTO currencies (currency_code, currency_name, added_at)
		VALUES ($1, $2, $3)`

	queryGetCurrency = `
		SELECT currency_code, currency_name, added_at
		FROM currencies
		WHERE currency_code = $1`

	queryListCurrencies = `
		SELECT currency_code, currency_name, added_at
		FROM currencies
		ORDER BY currency_code`
)
