// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package journal

const distributionTableSchema = `
create table if not exists distribution (
	id text primary key,
	source blob(20),
	amount integer,
	totalStake text,
	status text,
	held integer,
	dust integer,
	paid integer,
	createdAt integer
);

CREATE INDEX if not exists distributionCreatedAtIndex on distribution(createdAt);
CREATE INDEX if not exists distributionSourceIndex on distribution(source);
`

const payoutTableSchema = `
create table if not exists payout (
	distributionID text,
	seq integer,
	owner blob(20),
	sub blob(32),
	stake integer,
	reward integer,
	status text,
	err text,
	primary key (distributionID, seq)
);
`

const unreturnedTableSchema = `
create table if not exists unreturned (
	seq integer primary key autoincrement,
	owner blob(20),
	sub blob(32),
	depositID integer,
	amount integer,
	err text,
	createdAt integer
);

CREATE INDEX if not exists unreturnedOwnerIndex on unreturned(owner);
`
