package wizard

import "fmt"

// Panel is the content of one wizard step.  It is one of *RequirementsPanel, *InstallPanel or
// *CompletePanel.
type Panel interface {
	Kind() StepKind
}

// CheckItem is a titled checklist entry.
type CheckItem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Field is a server details input.
type Field struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Placeholder string `json:"placeholder"`
	Secret      bool   `json:"secret"`
}

// Alert is the highlighted introduction at the top of a step.
type Alert struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Section is a numbered group of commands.
type Section struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Note     string   `json:"note"`
	Commands []string `json:"commands"`
}

// AccessPoint is a service endpoint listed once installation completes.
type AccessPoint struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RequirementsPanel lists prerequisites and collects the server details.
type RequirementsPanel struct {
	Alert         Alert       `json:"alert"`
	Prerequisites []CheckItem `json:"prerequisites"`
	Fields        []Field     `json:"fields"`
}

// InstallPanel is an installation step: an introduction followed by command sections.
type InstallPanel struct {
	Step     StepKind  `json:"-"`
	Alert    Alert     `json:"alert"`
	Sections []Section `json:"sections"`
}

// CompletePanel summarizes the finished installation.
type CompletePanel struct {
	Heading      string        `json:"heading"`
	Message      string        `json:"message"`
	AccessPoints []AccessPoint `json:"accessPoints"`
	NextSteps    []CheckItem   `json:"nextSteps"`
}

// Kind implements Panel.
func (*RequirementsPanel) Kind() StepKind { return Requirements }

// Kind implements Panel.
func (p *InstallPanel) Kind() StepKind { return p.Step }

// Kind implements Panel.
func (*CompletePanel) Kind() StepKind { return Complete }

// Content builds the panel for step k using the provided server details.
func Content(k StepKind, d ServerDetails) Panel {
	switch k {
	case Requirements:
		return requirementsPanel(d)
	case Complete:
		return completePanel(d)
	}
	build, ok := installBuilders[k]
	if !ok {
		return requirementsPanel(d)
	}
	p := build(d)
	p.Step = k
	return p
}

var installBuilders = map[StepKind]func(ServerDetails) *InstallPanel{
	Database: databasePanel,
	Redis:    redisPanel,
	Postfix:  postfixPanel,
	Dovecot:  dovecotPanel,
	ClamAV:   clamavPanel,
	Rspamd:   rspamdPanel,
	Apache:   apachePanel,
	SSL:      sslPanel,
	Fail2ban: fail2banPanel,
	MailUser: mailUserPanel,
}

// detailForms holds the presentation of each ServerDetails input.
var detailForms = map[string]Field{
	FieldHostname:   {Label: "Server Hostname", Placeholder: "mail.example.com"},
	FieldIPAddress:  {Label: "Server IP Address", Placeholder: "192.168.1.100"},
	FieldDomain:     {Label: "Mail Domain", Placeholder: "example.com"},
	FieldAdminEmail: {Label: "Admin Email", Placeholder: "admin@example.com"},
	FieldPassword:   {Label: "Default Password", Placeholder: "Secure password", Secret: true},
}

func detailFields(d ServerDetails) []Field {
	fields := make([]Field, 0, len(FieldNames))
	for _, name := range FieldNames {
		f := detailForms[name]
		f.Name = name
		f.Value, _ = d.Get(name)
		fields = append(fields, f)
	}
	return fields
}

func requirementsPanel(d ServerDetails) *RequirementsPanel {
	return &RequirementsPanel{
		Alert: Alert{
			Title: "Prerequisites",
			Text:  "Before proceeding, ensure you have the following ready:",
		},
		Prerequisites: []CheckItem{
			{"Ubuntu 22.04 LTS Server", "A clean installation with root or sudo access"},
			{"Registered Domain Name", "You'll need a domain name for your mail server"},
			{"DNS Records", "Access to configure A, MX, and PTR records for your domain"},
			{"Static IP Address", "A static IP address for your server"},
			{"Basic Linux Knowledge", "Familiarity with command line and basic server administration"},
		},
		Fields: detailFields(d),
	}
}

func databasePanel(d ServerDetails) *InstallPanel {
	return &InstallPanel{
		Alert: Alert{"MariaDB Database Setup",
			"We'll install and configure MariaDB for storing mail user data and configuration."},
		Sections: []Section{
			{"installation", "Install MariaDB",
				"This installs the MariaDB server and client packages.", []string{
				"sudo apt update",
				"sudo apt install -y mariadb-server mariadb-client",
			}},
			{"secure", "Secure MariaDB Installation",
				"Follow the prompts to set a root password and secure your installation.", []string{
				"sudo mysql_secure_installation",
			}},
			{"database", "Create Mail Database",
				"This creates a database and user for mail server components.", []string{
				"sudo mysql -u root -p",
				"",
				"CREATE DATABASE runic_mail_db CHARACTER SET 'utf8mb4' COLLATE 'utf8mb4_unicode_ci';",
				"",
				fmt.Sprintf("CREATE USER 'runic_mail_user'@'localhost' IDENTIFIED BY '%s';", d.Password),
				"GRANT ALL PRIVILEGES ON runic_mail_db.* TO 'runic_mail_user'@'localhost';",
				"FLUSH PRIVILEGES;",
				"EXIT;",
			}},
			{"verify", "Verify Database Connection",
				"Test the connection with the new user credentials.", []string{
				"mysql -u runic_mail_user -p runic_mail_db",
			}},
		},
	}
}

func redisPanel(ServerDetails) *InstallPanel {
	return &InstallPanel{
		Alert: Alert{"Redis Installation",
			"Redis will be used by Rspamd for caching and data storage."},
		Sections: []Section{
			{"installation", "Install Redis",
				"This installs the Redis server package.", []string{
				"sudo apt update",
				"sudo apt install -y redis-server",
			}},
			{"enable", "Enable Redis Service",
				"This ensures Redis starts automatically on system boot.", []string{
				"sudo systemctl enable redis-server",
				"sudo systemctl start redis-server",
			}},
			{"verify", "Verify Redis Installation",
				`Should return "PONG" if Redis is running correctly.`, []string{
				"redis-cli ping",
			}},
		},
	}
}

func postfixPanel(ServerDetails) *InstallPanel {
	return &InstallPanel{
		Alert: Alert{"Postfix Configuration",
			"Postfix is the Mail Transfer Agent (MTA) that handles sending and receiving emails."},
		Sections: []Section{
			{"installation", "Install Postfix",
				`During installation, select "Internet Site" and enter your domain name.`, []string{
				"sudo apt update",
				"sudo apt install -y postfix postfix-mysql postfix-pcre libsasl2-modules",
			}},
			{"config", "Configure Postfix",
				"Edit the main configuration file with your domain settings.", []string{
				"sudo cp /etc/postfix/main.cf /etc/postfix/main.cf.bak",
				"sudo nano /etc/postfix/main.cf",
			}},
			{"mysql", "Create MySQL Configuration Files",
				"Create configuration files for MySQL integration.", []string{
				"sudo nano /etc/postfix/mysql-virtual-mailbox-domains.cf",
				"sudo nano /etc/postfix/mysql-virtual-mailbox-maps.cf",
				"sudo nano /etc/postfix/mysql-virtual-alias-maps.cf",
				"sudo nano /etc/postfix/mysql-email2email.cf",
			}},
			{"restart", "Restart Postfix",
				"Restart and check the status of the Postfix service.", []string{
				"sudo systemctl restart postfix",
				"sudo systemctl status postfix",
			}},
		},
	}
}

func dovecotPanel(ServerDetails) *InstallPanel {
	return &InstallPanel{
		Alert: Alert{"Dovecot Configuration",
			"Dovecot provides IMAP and POP3 services for accessing emails."},
		Sections: []Section{
			{"installation", "Install Dovecot",
				"Install Dovecot and required packages.", []string{
				"sudo apt update",
				"sudo apt install -y dovecot-core dovecot-imapd dovecot-pop3d dovecot-lmtpd " +
					"dovecot-mysql dovecot-sieve dovecot-managesieved",
			}},
			{"config", "Configure Dovecot",
				"Edit the main Dovecot configuration file.", []string{
				"sudo cp /etc/dovecot/dovecot.conf /etc/dovecot/dovecot.conf.bak",
				"sudo nano /etc/dovecot/dovecot.conf",
			}},
			{"auth", "Configure Authentication",
				"Configure authentication settings and database integration.", []string{
				"sudo nano /etc/dovecot/conf.d/10-auth.conf",
				"sudo nano /etc/dovecot/conf.d/auth-sql.conf.ext",
				"sudo nano /etc/dovecot/dovecot-sql.conf.ext",
			}},
			{"mail", "Configure Mail Storage",
				"Configure mail storage and create the vmail user.", []string{
				"sudo nano /etc/dovecot/conf.d/10-mail.conf",
				"",
				"sudo groupadd -g 5000 vmail",
				"sudo useradd -u 5000 -g vmail -s /usr/sbin/nologin -d /var/vmail -m vmail",
				"sudo mkdir -p /var/vmail",
				"sudo chown -R vmail:vmail /var/vmail",
			}},
			{"ssl", "Configure SSL",
				"Configure SSL/TLS settings for secure connections.", []string{
				"sudo nano /etc/dovecot/conf.d/10-ssl.conf",
			}},
			{"restart", "Restart Dovecot",
				"Restart and check the status of the Dovecot service.", []string{
				"sudo systemctl restart dovecot",
				"sudo systemctl status dovecot",
			}},
		},
	}
}

func clamavPanel(ServerDetails) *InstallPanel {
	return &InstallPanel{
		Alert: Alert{"ClamAV Installation",
			"ClamAV provides antivirus scanning for incoming and outgoing emails."},
		Sections: []Section{
			{"installation", "Install ClamAV",
				"Install ClamAV and the daemon service.", []string{
				"sudo apt update",
				"sudo apt install -y clamav clamav-daemon",
			}},
			{"update", "Update Virus Definitions",
				"Update virus definitions database.", []string{
				"sudo systemctl stop clamav-freshclam",
				"sudo freshclam",
				"sudo systemctl start clamav-freshclam",
			}},
			{"config", "Configure ClamAV",
				"Edit the ClamAV configuration file.", []string{
				"sudo nano /etc/clamav/clamd.conf",
			}},
			{"restart", "Start ClamAV Service",
				"Enable, restart, and check the status of the ClamAV daemon.", []string{
				"sudo systemctl enable clamav-daemon",
				"sudo systemctl restart clamav-daemon",
				"sudo systemctl status clamav-daemon",
			}},
		},
	}
}

func rspamdPanel(d ServerDetails) *InstallPanel {
	keyPath := fmt.Sprintf("/var/lib/rspamd/dkim/%s.mail", d.Domain)
	return &InstallPanel{
		Alert: Alert{"Rspamd Configuration",
			"Rspamd provides advanced spam filtering and email processing."},
		Sections: []Section{
			{"installation", "Install Rspamd",
				"Add Rspamd repository and install the package.", []string{
				"sudo apt update",
				"sudo apt install -y lsb-release wget",
				"",
				"CODENAME=$(lsb_release -c -s)",
				"wget -O- https://rspamd.com/apt-stable/gpg.key | sudo apt-key add -",
				`echo "deb [arch=amd64] https://rspamd.com/apt-stable/ $CODENAME main" | ` +
					"sudo tee /etc/apt/sources.list.d/rspamd.list",
				"",
				"sudo apt update",
				"sudo apt install -y rspamd",
			}},
			{"config", "Configure Rspamd",
				"Create and edit Rspamd configuration files.", []string{
				"sudo mkdir -p /etc/rspamd/local.d",
				"",
				"sudo nano /etc/rspamd/local.d/worker-proxy.inc",
				"sudo nano /etc/rspamd/local.d/classifier-bayes.conf",
				"sudo nano /etc/rspamd/local.d/redis.conf",
				"sudo nano /etc/rspamd/local.d/antivirus.conf",
			}},
			{"password", "Set Web Interface Password",
				"Generate a password hash and configure the web interface.", []string{
				"sudo rspamadm pw",
				"sudo nano /etc/rspamd/local.d/worker-controller.inc",
			}},
			{"dkim", "Configure DKIM Signing",
				"Generate DKIM keys and configure DKIM signing.", []string{
				"sudo mkdir -p /var/lib/rspamd/dkim/",
				"sudo chown -R _rspamd:_rspamd /var/lib/rspamd/dkim/",
				"",
				fmt.Sprintf("sudo rspamadm dkim_keygen -d %s -s mail -k %s.key > %s.pub",
					d.Domain, keyPath, keyPath),
				"",
				"sudo nano /etc/rspamd/local.d/dkim_signing.conf",
			}},
			{"restart", "Start Rspamd Service",
				"Enable, restart, and check the status of the Rspamd service.", []string{
				"sudo systemctl enable rspamd",
				"sudo systemctl restart rspamd",
				"sudo systemctl status rspamd",
			}},
		},
	}
}

func apachePanel(d ServerDetails) *InstallPanel {
	return &InstallPanel{
		Alert: Alert{"Apache Web Server Setup",
			"Apache will serve the web interfaces for mail server management."},
		Sections: []Section{
			{"installation", "Install Apache",
				"Install the Apache web server.", []string{
				"sudo apt update",
				"sudo apt install -y apache2",
			}},
			{"modules", "Enable Required Modules",
				"Enable necessary Apache modules.", []string{
				"sudo a2enmod ssl rewrite proxy proxy_http headers",
			}},
			{"vhost", "Configure Virtual Host",
				"Create a virtual host configuration file.", []string{
				fmt.Sprintf("sudo nano /etc/apache2/sites-available/%s.conf", d.Hostname),
			}},
			{"enable", "Enable Virtual Host",
				"Disable default site, enable your virtual host, and test configuration.", []string{
				"sudo a2dissite 000-default.conf",
				fmt.Sprintf("sudo a2ensite %s.conf", d.Hostname),
				"sudo apache2ctl configtest",
			}},
			{"restart", "Restart Apache",
				"Restart and check the status of the Apache service.", []string{
				"sudo systemctl restart apache2",
				"sudo systemctl status apache2",
			}},
		},
	}
}

func sslPanel(d ServerDetails) *InstallPanel {
	return &InstallPanel{
		Alert: Alert{"SSL Certificate Setup",
			"Secure your mail server with Let's Encrypt SSL certificates."},
		Sections: []Section{
			{"installation", "Install Certbot",
				"Install Certbot and the Apache plugin.", []string{
				"sudo apt update",
				"sudo apt install -y certbot python3-certbot-apache",
			}},
			{"obtain", "Obtain SSL Certificate",
				"Stop Apache temporarily and obtain a certificate.", []string{
				"sudo systemctl stop apache2",
				fmt.Sprintf("sudo certbot certonly --standalone -d %s --agree-tos -m %s --no-eff-email",
					d.Hostname, d.AdminEmail),
			}},
			{"config", "Configure Services to Use SSL",
				"Update configuration files to use the new SSL certificates.", []string{
				"# Update Postfix configuration",
				"sudo nano /etc/postfix/main.cf",
				"",
				"# Update Dovecot configuration",
				"sudo nano /etc/dovecot/conf.d/10-ssl.conf",
				"",
				"# Update Apache configuration",
				fmt.Sprintf("sudo nano /etc/apache2/sites-available/%s.conf", d.Hostname),
			}},
			{"restart", "Restart Services",
				"Start Apache and restart mail services to apply SSL configuration.", []string{
				"sudo systemctl start apache2",
				"sudo systemctl restart postfix",
				"sudo systemctl restart dovecot",
			}},
			{"renewal", "Test Certificate Renewal",
				"Test the certificate renewal process.", []string{
				"sudo certbot renew --dry-run",
			}},
		},
	}
}

func fail2banPanel(ServerDetails) *InstallPanel {
	return &InstallPanel{
		Alert: Alert{"Fail2ban Configuration",
			"Fail2ban helps protect your server by banning IPs that show malicious signs."},
		Sections: []Section{
			{"installation", "Install Fail2ban",
				"Install the Fail2ban package.", []string{
				"sudo apt update",
				"sudo apt install -y fail2ban",
			}},
			{"config", "Configure Fail2ban",
				"Create a local configuration file and edit settings.", []string{
				"sudo cp /etc/fail2ban/jail.conf /etc/fail2ban/jail.local",
				"sudo nano /etc/fail2ban/jail.local",
			}},
			{"jails", "Enable Jails",
				"Enable specific jails for different services.", []string{
				"# Edit jail.local to enable these jails:",
				"# [sshd]",
				"# [postfix-sasl]",
				"# [dovecot]",
				"# [apache-auth]",
				"# [apache-badbots]",
			}},
			{"restart", "Start Fail2ban Service",
				"Enable, restart, and check the status of the Fail2ban service.", []string{
				"sudo systemctl enable fail2ban",
				"sudo systemctl restart fail2ban",
				"sudo systemctl status fail2ban",
			}},
			{"status", "Check Jail Status",
				"Check the status of all jails and specific jails.", []string{
				"sudo fail2ban-client status",
				"sudo fail2ban-client status sshd",
			}},
		},
	}
}

func mailUserPanel(d ServerDetails) *InstallPanel {
	return &InstallPanel{
		Alert: Alert{"Create Mail User",
			"Create your first mail user to test the mail server functionality."},
		Sections: []Section{
			{"domain", "Add Domain to Database",
				"Create the domain table and add your domain.", []string{
				"sudo mysql -u root -p",
				"",
				"USE runic_mail_db;",
				"",
				"CREATE TABLE IF NOT EXISTS domain (",
				"  domain VARCHAR(255) NOT NULL PRIMARY KEY,",
				"  description VARCHAR(255) DEFAULT '' NOT NULL,",
				"  aliases INT DEFAULT 0 NOT NULL,",
				"  mailboxes INT DEFAULT 0 NOT NULL,",
				"  active TINYINT(1) DEFAULT 1 NOT NULL",
				") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;",
				"",
				"INSERT INTO domain (domain, description, active) VALUES",
				fmt.Sprintf("('%s', 'Runic Mail Domain', 1);", d.Domain),
			}},
			{"mailbox", "Create Mailbox Table",
				"Create the mailbox table for user accounts.", []string{
				"CREATE TABLE IF NOT EXISTS mailbox (",
				"  username VARCHAR(255) NOT NULL PRIMARY KEY,",
				"  password VARCHAR(255) NOT NULL,",
				"  name VARCHAR(255) DEFAULT '' NOT NULL,",
				"  maildir VARCHAR(255) NOT NULL,",
				"  quota BIGINT DEFAULT 0 NOT NULL,",
				"  domain VARCHAR(255) NOT NULL,",
				"  active TINYINT(1) DEFAULT 1 NOT NULL,",
				"  FOREIGN KEY (domain) REFERENCES domain(domain) ON DELETE CASCADE",
				") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;",
			}},
			{"alias", "Create Alias Table",
				"Create the alias table for email forwarding.", []string{
				"CREATE TABLE IF NOT EXISTS alias (",
				"  address VARCHAR(255) NOT NULL PRIMARY KEY,",
				"  goto TEXT NOT NULL,",
				"  domain VARCHAR(255) NOT NULL,",
				"  active TINYINT(1) DEFAULT 1 NOT NULL,",
				"  FOREIGN KEY (domain) REFERENCES domain(domain) ON DELETE CASCADE",
				") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;",
			}},
			{"password", "Generate Password Hash",
				"Generate a secure password hash for the user.", []string{
				fmt.Sprintf("sudo doveadm pw -s BLF-CRYPT -p '%s'", d.Password),
				"",
				"# This will output a hash like: {BLF-CRYPT}$2y$05$....some....long....hash....",
			}},
			{"user", "Add User to Database",
				"Add a user to the mailbox table.", []string{
				"# Replace YOUR_BLF_CRYPT_HASH_HERE with the hash from the previous step",
				"",
				"INSERT INTO mailbox (username, password, name, maildir, domain, active) VALUES",
				fmt.Sprintf("('user1@%s', 'YOUR_BLF_CRYPT_HASH_HERE', 'Test User One',", d.Domain),
				fmt.Sprintf("'%s/user1/', '%s', 1);", d.Domain, d.Domain),
			}},
		},
	}
}

func completePanel(d ServerDetails) *CompletePanel {
	return &CompletePanel{
		Heading: "Installation Complete!",
		Message: "Your Runic Mailman server has been successfully set up.",
		AccessPoints: []AccessPoint{
			{"Webmail", fmt.Sprintf("https://%s/", d.Hostname)},
			{"Rspamd Interface", fmt.Sprintf("https://%s/rspamd/", d.Hostname)},
			{"IMAP", fmt.Sprintf("%s (Port 993, SSL)", d.Hostname)},
			{"SMTP", fmt.Sprintf("%s (Port 587, STARTTLS)", d.Hostname)},
		},
		NextSteps: []CheckItem{
			{"Regular Updates", "Keep your system updated with sudo apt update && sudo apt upgrade -y"},
			{"Backup Strategy", "Implement regular backups of mail data and configuration files"},
			{"Monitor Logs", "Regularly check mail logs for issues: /var/log/mail.log"},
		},
	}
}
