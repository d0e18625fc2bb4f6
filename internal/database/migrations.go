package database

func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS transaction_data (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			apt_name TEXT NOT NULL,
			apt_seq TEXT,
			kind TEXT NOT NULL DEFAULT 'sale',
			region_code TEXT,
			region_name TEXT,
			umd_nm TEXT,
			deal_date TEXT,
			deal_year INTEGER,
			deal_month INTEGER,
			deal_day INTEGER,
			deal_amount INTEGER,
			exclusive_area REAL,
			price_per_area REAL,
			floor INTEGER,
			build_year INTEGER,
			road_name TEXT,
			road_name_bonbun TEXT,
			road_name_bubun TEXT,
			jibun TEXT,
			buyer_gbn TEXT,
			sler_gbn TEXT,
			dealing_gbn TEXT,
			deposit INTEGER DEFAULT 0,
			monthly_rent INTEGER DEFAULT 0,
			contract_term TEXT,
			contract_type TEXT,
			source TEXT DEFAULT 'live',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (apt_name, apt_seq, deal_date, deal_amount)
		);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transaction_region
		ON transaction_data(region_code);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transaction_deal_date
		ON transaction_data(deal_date);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS search_cache (
			cache_key TEXT PRIMARY KEY,
			region_code TEXT NOT NULL,
			region_name TEXT,
			query_type TEXT NOT NULL,
			months INTEGER NOT NULL,
			search_date TEXT NOT NULL,
			total_count INTEGER DEFAULT 0,
			classified_data TEXT,
			raw_data TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			expires_at TIMESTAMP NOT NULL,
			is_valid INTEGER DEFAULT 1
		);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_search_cache_expires
		ON search_cache(expires_at);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS favorite_apartments (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			apt_name TEXT NOT NULL,
			region_code TEXT NOT NULL,
			region_name TEXT,
			apt_seq TEXT,
			road_name TEXT,
			road_name_bonbun TEXT,
			road_name_bubun TEXT,
			umd_nm TEXT,
			build_year INTEGER,
			exclusive_area REAL,
			notes TEXT,
			is_active INTEGER DEFAULT 1,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (apt_name, region_code)
		);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS price_alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			apt_name TEXT NOT NULL,
			region_code TEXT NOT NULL,
			alert_type TEXT NOT NULL,
			threshold_value REAL NOT NULL,
			current_value REAL DEFAULT 0,
			is_triggered INTEGER DEFAULT 0,
			triggered_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			notes TEXT
		);
	`)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(`
		CREATE TABLE IF NOT EXISTS telegram_config (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bot_token TEXT NOT NULL,
			chat_id TEXT NOT NULL,
			is_enabled INTEGER DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return err
	}

	return nil
}
